package tune

import (
	"context"
	"runtime"
	"sync"
)

// Result is the winning candidate and its cost.
type Result struct {
	Candidate Candidate
	Cost      float64
	Evaluated int
}

// Search evaluates every grid candidate against the trial across a
// worker pool and returns the lowest-cost result. workers <= 0 uses one
// worker per CPU.
func Search(ctx context.Context, trial Trial, grid Grid, workers int) (Result, error) {
	candidates := grid.Candidates()
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	jobs := make(chan Candidate)
	results := make(chan Result, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range jobs {
				results <- Result{Candidate: c, Cost: trial.Cost(c)}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, c := range candidates {
			select {
			case <-ctx.Done():
				return
			case jobs <- c:
			}
		}
	}()

	best := Result{Cost: -1}
	for r := range results {
		if best.Cost < 0 || r.Cost < best.Cost {
			best.Candidate = r.Candidate
			best.Cost = r.Cost
		}
		best.Evaluated++
	}

	if err := ctx.Err(); err != nil {
		return best, err
	}
	return best, nil
}
