// Package profile synthesizes load factor curves from layered simplex
// noise. A profile is a smooth deterministic function of a step counter;
// the daemon walks it one step per sample, and sweeps evaluate slices of
// it. Because every point is pure in (seed, step), any stretch of the curve
// can be recomputed at will.
package profile

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/Gianni-inc/QuantumGianni/internal/entropy"
)

// Config holds the curve generation parameters.
type Config struct {
	Seed        int64   // noise seed, 0 means draw one from entropy
	Octaves     int     // number of noise layers
	Frequency   float64 // base frequency along the step axis
	Persistence float64 // per-octave amplitude falloff
	Min         float64 // lower bound of the load factor
	Max         float64 // upper bound of the load factor
}

// DefaultConfig returns the curve the daemon uses: a gentle drift through
// load factors between idle and double load.
func DefaultConfig() Config {
	return Config{
		Octaves:     3,
		Frequency:   0.01,
		Persistence: 0.5,
		Min:         0.0,
		Max:         2.0,
	}
}

// Generator produces load factors from a fixed seed.
type Generator struct {
	noise opensimplex.Noise
	cfg   Config
	seed  int64
}

// New creates a Generator. A zero seed is replaced by an entropy draw, and
// octave counts below one are clamped to one.
func New(cfg Config) *Generator {
	seed := cfg.Seed
	if seed == 0 {
		seed = entropy.Seed()
	}
	if cfg.Octaves < 1 {
		cfg.Octaves = 1
	}
	return &Generator{
		noise: opensimplex.NewNormalized(seed),
		cfg:   cfg,
		seed:  seed,
	}
}

// Seed returns the seed in use, which matters when it was entropy-drawn.
func (g *Generator) Seed() int64 { return g.seed }

// At returns the load factor at the given step, scaled into [Min, Max].
func (g *Generator) At(step uint64) float64 {
	v := octaveNoise(g.noise, float64(step), g.cfg.Octaves, g.cfg.Frequency, g.cfg.Persistence)
	return g.cfg.Min + v*(g.cfg.Max-g.cfg.Min)
}

// Point is one sample of the curve.
type Point struct {
	Step uint64  `json:"step"`
	Load float64 `json:"load"`
}

// Slice samples the half-open step range [from, from+steps).
func (g *Generator) Slice(from uint64, steps int) []Point {
	pts := make([]Point, 0, max(steps, 0))
	for k := 0; k < steps; k++ {
		step := from + uint64(k)
		pts = append(pts, Point{Step: step, Load: g.At(step)})
	}
	return pts
}

// octaveNoise layers multiple noise frequencies along the step axis for a
// more organic curve. The weighted layers are renormalized back into [0, 1].
func octaveNoise(noise opensimplex.Noise, x float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, float64(i)*100) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxValue
}
