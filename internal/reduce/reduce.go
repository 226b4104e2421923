// Package reduce provides sequential and parallel folds over ranges of
// independently computable series terms. Terms are indexed from 1 to n
// inclusive, matching the mathematical convention of the score kernels.
package reduce

import (
	"sync"

	"golang.org/x/exp/constraints"
)

// Sum folds term(1) + term(2) + ... + term(n) in strict index order. An
// empty range (n <= 0) yields zero. This is the path to use when results
// must be bit-identical across runs.
func Sum[F constraints.Float](n int, term func(i int) F) F {
	var acc F
	for i := 1; i <= n; i++ {
		acc += term(i)
	}
	return acc
}

// Product folds term(1) · term(2) · ... · term(n) in strict index order. An
// empty range yields one, the multiplicative identity.
func Product[F constraints.Float](n int, term func(i int) F) F {
	acc := F(1)
	for i := 1; i <= n; i++ {
		acc *= term(i)
	}
	return acc
}

// ParallelSum splits [1, n] into one contiguous chunk per worker, folds each
// chunk in its own goroutine, then adds the partial sums together in chunk
// order. The result can differ from Sum only by floating-point
// reassociation at chunk boundaries; the chunk layout depends on the worker
// count alone, so a given (n, workers) pair always produces the same bits.
func ParallelSum[F constraints.Float](n, workers int, term func(i int) F) F {
	var total F
	for _, p := range foldChunks(n, workers, 0, func(acc F, i int) F { return acc + term(i) }) {
		total += p
	}
	return total
}

// ParallelProduct is the multiplicative counterpart of ParallelSum: identity
// one, partial products multiplied together in chunk order.
func ParallelProduct[F constraints.Float](n, workers int, term func(i int) F) F {
	total := F(1)
	for _, p := range foldChunks(n, workers, 1, func(acc F, i int) F { return acc * term(i) }) {
		total *= p
	}
	return total
}

// foldChunks runs the fan-out and returns the per-chunk partials in chunk
// order. Each goroutine owns its accumulator and its slot in the partials
// slice exclusively, so no locking is needed. workers < 1 is treated as 1
// and workers > n is capped at n; n <= 0 returns nil.
func foldChunks[F constraints.Float](n, workers int, identity F, step func(acc F, i int) F) []F {
	if n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	chunk := (n + workers - 1) / workers
	partials := make([]F, workers)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func(w int) {
			defer wg.Done()
			lo := 1 + w*chunk
			hi := lo + chunk - 1
			if hi > n {
				hi = n
			}
			acc := identity
			for i := lo; i <= hi; i++ {
				acc = step(acc, i)
			}
			partials[w] = acc
		}(w)
	}
	wg.Wait()
	return partials
}
