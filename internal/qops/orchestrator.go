package qops

// Params carries every input the score depends on. The zero value is not
// useful; start from DefaultParams and override fields as needed.
type Params struct {
	X          float64 `json:"x"`
	T          float64 `json:"t"`
	Depth      int     `json:"depth"`
	Dimensions int     `json:"dimensions"`
	Layers     int     `json:"layers"`
	LoadFactor float64 `json:"load_factor"`
}

// DefaultParams returns the canonical operating point of the system.
func DefaultParams() Params {
	return Params{
		X:          42.0,
		T:          3.14,
		Depth:      5,
		Dimensions: 4,
		Layers:     3,
		LoadFactor: 0.8,
	}
}

// Breakdown holds the four kernel outputs and their combination. Total is
// Recursive + Tensor + Feedback·Scale; the product term dominates at any
// realistic load.
type Breakdown struct {
	Recursive float64 `json:"recursive_sum"`
	Tensor    float64 `json:"tensor_det"`
	Feedback  float64 `json:"feedback_series"`
	Scale     float64 `json:"load_scale"`
	Total     float64 `json:"total"`
}

// Orchestrate evaluates all four kernels sequentially and combines them.
// Same params in, same bits out, on every run and every platform that
// implements IEEE-754 doubles.
func Orchestrate(p Params) Breakdown {
	b := Breakdown{
		Recursive: RecursiveSum(p.X, p.T, p.Depth),
		Tensor:    TensorDeterminant(p.X, p.T, p.Dimensions),
		Feedback:  FeedbackSeries(p.X, p.Layers),
		Scale:     LoadScale(p.LoadFactor),
	}
	b.Total = b.Recursive + b.Tensor + b.Feedback*b.Scale
	return b
}

// OrchestrateParallel is Orchestrate with the series kernels fanned out
// across at most workers goroutines each. workers < 1 is treated as 1, which
// reproduces Orchestrate exactly. The combination step is always sequential.
func OrchestrateParallel(p Params, workers int) Breakdown {
	b := Breakdown{
		Recursive: recursiveSumParallel(p.X, p.T, p.Depth, workers),
		Tensor:    tensorDeterminantParallel(p.X, p.T, p.Dimensions, workers),
		Feedback:  feedbackSeriesParallel(p.X, p.Layers, workers),
		Scale:     LoadScale(p.LoadFactor),
	}
	b.Total = b.Recursive + b.Tensor + b.Feedback*b.Scale
	return b
}
