package qops

import (
	"math"

	"github.com/Gianni-inc/QuantumGianni/internal/reduce"
)

// The four score kernels. Each is a pure function of scalar inputs and a
// loop bound, and each series term is independent of every other, which is
// what lets OrchestrateParallel fan the reductions out. IEEE-754 edge cases
// are deliberately untrapped: log of zero, fractional powers of negative
// bases and division by zero produce NaN or ±Inf, and those values flow
// through to the final score unchanged.

// recursiveTerm is the i-th term of the recursive energy series,
// sin(x + i·t) / i².
func recursiveTerm(x, t float64) func(i int) float64 {
	return func(i int) float64 {
		k := float64(i)
		return math.Sin(x+k*t) / (k * k)
	}
}

// logTerm is the damping tail |ln|x·t||. x·t = 0 sends it to +Inf.
func logTerm(x, t float64) float64 {
	return math.Abs(math.Log(math.Abs(x * t)))
}

// tensorRow is the i-th row factor of the tensor product, itself a product
// over the row: Π_j (cos(x·i + t·j) + TensorBias).
func tensorRow(x, t float64, dimensions int) func(i int) float64 {
	return func(i int) float64 {
		return reduce.Product(dimensions, func(j int) float64 {
			return math.Cos(x*float64(i)+t*float64(j)) + TensorBias
		})
	}
}

// feedbackTerm is the i-th inverse-power term 1 / (x + i)^1.5.
func feedbackTerm(x float64) func(i int) float64 {
	return func(i int) float64 {
		return 1 / math.Pow(x+float64(i), 1.5)
	}
}

// RecursiveSum computes Σ_{i=1..depth} sin(x + i·t)/i² + |ln|x·t||.
// depth = 0 leaves only the logarithmic term.
func RecursiveSum(x, t float64, depth int) float64 {
	return reduce.Sum(depth, recursiveTerm(x, t)) + logTerm(x, t)
}

// TensorDeterminant computes Π_{i=1..n} Π_{j=1..n} (cos(x·i + t·j) + TensorBias)
// over an n×n index grid. n = 0 yields the empty product, 1.
func TensorDeterminant(x, t float64, dimensions int) float64 {
	return reduce.Product(dimensions, tensorRow(x, t, dimensions))
}

// FeedbackSeries computes QOPS · Σ_{i=1..layers} 1/(x + i)^1.5. A term with
// x + i = 0 is +Inf, and x + i < 0 is NaN; both poison the whole series.
func FeedbackSeries(x float64, layers int) float64 {
	return QOPS * reduce.Sum(layers, feedbackTerm(x))
}

// LoadScale computes QOPS · (1 + loadFactor), the baseline throughput
// adjusted for the current load.
func LoadScale(loadFactor float64) float64 {
	return QOPS * (1 + loadFactor)
}

// Parallel variants of the series kernels. Results may differ from the
// sequential kernels only by floating-point reassociation across chunk
// boundaries; with one worker they are bit-identical.

func recursiveSumParallel(x, t float64, depth, workers int) float64 {
	return reduce.ParallelSum(depth, workers, recursiveTerm(x, t)) + logTerm(x, t)
}

func tensorDeterminantParallel(x, t float64, dimensions, workers int) float64 {
	return reduce.ParallelProduct(dimensions, workers, tensorRow(x, t, dimensions))
}

func feedbackSeriesParallel(x float64, layers, workers int) float64 {
	return QOPS * reduce.ParallelSum(layers, workers, feedbackTerm(x))
}
