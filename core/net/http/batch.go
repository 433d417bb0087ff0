package http

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const defaultBatchConcurrency = 8

// Call is one request of a batch
type Call struct {
	Endpoint string
	Method   string
	Data     any
}

// Result is the outcome of one Call
type Result struct {
	Data any
	Err  error
}

// DispatchAll sends calls with at most concurrency requests in flight and returns one
// Result per call, in call order. A failing call does not stop the others.
// concurrency <= 0 means 8.
func (d *Dispatcher) DispatchAll(ctx context.Context, calls []Call, concurrency int) ([]Result, error) {
	results := make([]Result, len(calls))
	if len(calls) == 0 {
		return results, nil
	}

	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}
	pool, err := ants.NewPool(min(concurrency, len(calls)))
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			results[i].Data, results[i].Err = d.Dispatch(ctx, call.Endpoint, call.Method, call.Data)
		})
		if err != nil {
			wg.Done()
			results[i].Err = err
		}
	}
	wg.Wait()

	return results, nil
}
