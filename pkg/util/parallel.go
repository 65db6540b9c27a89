package util

import (
	"context"
	"sync"
)

// Parallel runs fn over inputs with at most workerLimit goroutines. Unlike an
// errgroup, one input's failure never stops the others; fn is expected to
// handle and log its own errors. Feeding stops once ctx is cancelled, but
// already-dispatched calls run to completion.
func Parallel[T any](ctx context.Context, inputs []T, workerLimit int, fn func(context.Context, T)) {
	if len(inputs) == 0 {
		return
	}
	if workerLimit <= 0 {
		workerLimit = 1
	}

	tasks := make(chan T)

	wg := sync.WaitGroup{}
	for i := 0; i < workerLimit; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				fn(ctx, item)
			}
		}()
	}

	for _, item := range inputs {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()
}
