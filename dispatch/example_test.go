package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonwraymond/dispatchops/dispatch"
	"github.com/jonwraymond/dispatchops/resilience"
)

func ExampleNew() {
	retries, err := dispatch.New(
		dispatch.WithBatchPolicy(resilience.NewRetry(resilience.RetryConfig{
			MaxRetries:   1,
			InitialDelay: time.Millisecond,
		})),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	attempts := 0
	send := retries.Middleware()(func(ctx context.Context, ops []dispatch.Operation) error {
		attempts++
		if attempts == 1 {
			return errors.New("transient")
		}
		return nil
	})

	err = send(context.Background(), []dispatch.Operation{{MessageID: "1", Destination: "billing"}})
	fmt.Println("attempts:", attempts, "error:", err)
	// Output:
	// attempts: 2 error: <nil>
}

func ExampleOverrideImmediatePolicy() {
	retries, _ := dispatch.New()

	// Handlers run inside an incoming unit of work.
	ctx := dispatch.BeginIncoming(context.Background())
	_ = dispatch.OverrideImmediatePolicy(ctx, resilience.NewRetry(resilience.RetryConfig{MaxRetries: 2}))

	res, _ := retries.Resolve(ctx, dispatch.ModeImmediate)
	fmt.Println(res.Source, res.Strategy.Kind())

	res, _ = retries.Resolve(ctx, dispatch.ModeBatch)
	fmt.Println(res.Source, res.Strategy.Kind())
	// Output:
	// override policy
	// none none
}

func ExampleClassify() {
	ops := []dispatch.Operation{
		{MessageID: "1", Consistency: dispatch.ConsistencyIsolated},
		{MessageID: "2"},
	}

	fmt.Println(dispatch.Classify(ops[:1]))
	fmt.Println(dispatch.Classify(ops))
	// Output:
	// immediate
	// batch
}
