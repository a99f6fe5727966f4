package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/marczakme/enzo-translator/internal"
)

// BenchmarkResult is one provider's run of a benchmark.
type BenchmarkResult struct {
	Provider string                      `json:"provider"`
	Result   *internal.TranslationResult `json:"result,omitempty"`
	Error    string                      `json:"error,omitempty"`
	Latency  time.Duration               `json:"latency"`
}

// Benchmark runs the same request once per provider, concurrently, each
// reviewed by ReviewerProvider. Results are in the order of providers.
// Providers still waiting for a slot when ctx ends are not called; their
// result carries the context error.
func (o *Orchestrator) Benchmark(ctx context.Context, req internal.TranslationRequest, providers []string) []BenchmarkResult {
	type indexed struct {
		index int
		res   BenchmarkResult
	}

	results := make([]BenchmarkResult, len(providers))
	resultChan := make(chan indexed, len(providers))
	sem := make(chan struct{}, o.config.MaxParallel)

	var wg sync.WaitGroup
	for i, id := range providers {
		wg.Add(1)
		go func(index int, providerID string) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
			}
			if err := ctx.Err(); err != nil {
				resultChan <- indexed{index: index, res: BenchmarkResult{Provider: providerID, Error: err.Error()}}
				return
			}

			r := req
			r.Provider = providerID
			start := time.Now()
			res, err := o.TranslateAndReview(ctx, r)

			br := BenchmarkResult{Provider: providerID, Result: res, Latency: time.Since(start)}
			if err != nil {
				br.Error = err.Error()
			}
			resultChan <- indexed{index: index, res: br}
		}(i, id)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	for rc := range resultChan {
		results[rc.index] = rc.res
	}
	return results
}
