/*
batch.go - Concurrent batch calculation

PURPOSE:
  Fans a batch of payroll cases out over a bounded worker pool. Each case
  is independent, so the pool runs them in parallel and reassembles the
  results in input order.

CONCURRENCY MODEL:
  - One goroutine per worker, capped at batchWorkers
  - Cases are fed through a channel carrying their input index
  - Workers write into a pre-sized result slice; index ownership makes
    the writes race-free
  - sync.WaitGroup joins the pool before results are read

ERROR HANDLING:
  A failed case never aborts the batch. The error is captured on its row
  and the remaining cases keep processing.

SEE ALSO:
  - handlers.go: CalculateBatch endpoint
  - garnish/priority.go: The allocator each worker runs
*/
package api

import (
	"sync"

	"github.com/garnishedge/garnish-engine/garnish"
)

// batchWorkers caps the worker pool size for one batch.
const batchWorkers = 8

// batchResult is one case's outcome, either a result or an error.
type batchResult struct {
	employeeID string
	result     *garnish.CaseResult
	err        error
}

// processBatch runs the allocator over every case concurrently and returns
// the results in input order, plus the number of failed cases.
func processBatch(allocator *garnish.PriorityAllocator, cases []CaseDTO) ([]batchResult, int) {
	results := make([]batchResult, len(cases))

	workers := batchWorkers
	if len(cases) < workers {
		workers = len(cases)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				c := cases[i]
				rec := toPayrollRecord(c.Payroll)
				cr, err := allocator.Allocate(rec, toOrders(c.Orders))
				results[i] = batchResult{
					employeeID: c.Payroll.EmployeeID,
					result:     cr,
					err:        err,
				}
			}
		}()
	}

	for i := range cases {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	errCount := 0
	for _, r := range results {
		if r.err != nil {
			errCount++
		}
	}
	return results, errCount
}
