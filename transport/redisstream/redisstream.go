// Package redisstream dispatches operations to Redis streams, one stream per
// destination.
//
// A call made of a single isolated operation is written with one XADD. Any
// other call is written in a MULTI/EXEC transaction so its operations become
// visible together or not at all.
package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/jonwraymond/dispatchops/dispatch"
)

// ErrNilClient is returned by New when no client is given.
var ErrNilClient = errors.New("redisstream: client is nil")

const (
	fieldMessageID   = "message_id"
	fieldMessageType = "message_type"
	fieldConsistency = "consistency"
	fieldBody        = "body"
	headerPrefix     = "h:"
)

// Transport writes dispatch calls to Redis streams.
type Transport struct {
	client redis.UniversalClient
	prefix string
	maxLen int64
}

// Option configures a Transport.
type Option func(*Transport)

// WithPrefix sets the stream key prefix. Default: "dispatch:".
func WithPrefix(prefix string) Option {
	return func(t *Transport) {
		t.prefix = prefix
	}
}

// WithMaxLen trims each stream to about n entries. Zero disables trimming.
func WithMaxLen(n int64) Option {
	return func(t *Transport) {
		if n > 0 {
			t.maxLen = n
		}
	}
}

// New creates a transport using client.
func New(client redis.UniversalClient, opts ...Option) (*Transport, error) {
	if client == nil {
		return nil, ErrNilClient
	}

	t := &Transport{client: client, prefix: "dispatch:"}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Dispatch writes ops to their destination streams.
func (t *Transport) Dispatch(ctx context.Context, ops []dispatch.Operation) error {
	switch {
	case len(ops) == 0:
		return nil
	case len(ops) == 1 && ops[0].Isolated():
		if err := t.client.XAdd(ctx, t.args(ops[0])).Err(); err != nil {
			return fmt.Errorf("redisstream: xadd %s: %w", ops[0].Destination, err)
		}
		return nil
	}

	_, err := t.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, op := range ops {
			pipe.XAdd(ctx, t.args(op))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redisstream: transaction of %d operations: %w", len(ops), err)
	}
	return nil
}

// Read returns every operation stored for destination, oldest first.
func (t *Transport) Read(ctx context.Context, destination string) ([]dispatch.Operation, error) {
	msgs, err := t.client.XRange(ctx, t.key(destination), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("redisstream: xrange %s: %w", destination, err)
	}

	ops := make([]dispatch.Operation, 0, len(msgs))
	for _, msg := range msgs {
		ops = append(ops, decode(destination, msg.Values))
	}
	return ops, nil
}

// Ping checks that the redis server is reachable.
func (t *Transport) Ping(ctx context.Context) error {
	if err := t.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redisstream: ping: %w", err)
	}
	return nil
}

func (t *Transport) key(destination string) string {
	return t.prefix + destination
}

func (t *Transport) args(op dispatch.Operation) *redis.XAddArgs {
	values := map[string]any{
		fieldMessageID:   op.MessageID,
		fieldMessageType: op.MessageType,
		fieldConsistency: op.Consistency.String(),
		fieldBody:        op.Body,
	}
	for k, v := range op.Headers {
		values[headerPrefix+k] = v
	}

	args := &redis.XAddArgs{
		Stream: t.key(op.Destination),
		Values: values,
	}
	if t.maxLen > 0 {
		args.MaxLen = t.maxLen
		args.Approx = true
	}
	return args
}

func decode(destination string, values map[string]any) dispatch.Operation {
	op := dispatch.Operation{Destination: destination}
	for k, raw := range values {
		v := fmt.Sprint(raw)
		switch {
		case k == fieldMessageID:
			op.MessageID = v
		case k == fieldMessageType:
			op.MessageType = v
		case k == fieldBody:
			op.Body = []byte(v)
		case k == fieldConsistency:
			if v == dispatch.ConsistencyIsolated.String() {
				op.Consistency = dispatch.ConsistencyIsolated
			}
		case strings.HasPrefix(k, headerPrefix):
			if op.Headers == nil {
				op.Headers = make(map[string]string)
			}
			op.Headers[strings.TrimPrefix(k, headerPrefix)] = v
		}
	}
	return op
}
