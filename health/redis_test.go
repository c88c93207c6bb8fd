package health_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/dispatchops/health"
	"github.com/jonwraymond/dispatchops/transport/redisstream"
)

func TestTransportChecker_RedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	tr, err := redisstream.New(client)
	if err != nil {
		t.Fatalf("redisstream.New() error = %v", err)
	}

	agg := health.NewAggregator()
	agg.Register(health.NewTransportChecker("redis", tr, 0))

	if got := agg.CheckAll(context.Background()).Status; got != health.StatusHealthy {
		t.Fatalf("Status = %v, want healthy", got)
	}

	mr.Close()
	if got := agg.CheckAll(context.Background()).Status; got != health.StatusUnhealthy {
		t.Errorf("Status after server closed = %v, want unhealthy", got)
	}
}
