// Package parallel splits index ranges across goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize runs fn over [0, n) split into one contiguous chunk per CPU.
func Parallelize(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold runs fn sequentially when n is below threshold and
// falls back to Parallelize otherwise. fn must only touch disjoint indices.
func ParallelizeWithThreshold(n, threshold int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if n < threshold {
		fn(0, n)
		return
	}
	Parallelize(n, fn)
}
