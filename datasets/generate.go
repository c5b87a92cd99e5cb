package datasets

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// LinearConfig describes a synthetic dataset whose target is a noisy linear
// function of the first feature: y = Slope*x0 + Intercept + N(0, Noise²).
// Remaining features are uniform noise in [0, 1).
type LinearConfig struct {
	Splits    int
	Features  int
	Train     int
	Valid     int
	Test      int
	Slope     float64
	Intercept float64
	Noise     float64
	Seed      uint64
}

// MakeLinear generates a deterministic synthetic dataset from cfg.
func MakeLinear(cfg LinearConfig) Dataset {
	if cfg.Features <= 0 {
		cfg.Features = 1
	}
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed))

	part := func(n int) Partition {
		x := mat.NewDense(n, cfg.Features, nil)
		y := make([]float64, n)
		for i := 0; i < n; i++ {
			for j := 0; j < cfg.Features; j++ {
				x.Set(i, j, rng.Float64())
			}
			y[i] = cfg.Slope*x.At(i, 0) + cfg.Intercept + rng.NormFloat64()*cfg.Noise
		}
		return Partition{X: x, Y: y}
	}

	ds := make(Dataset, cfg.Splits)
	for s := range ds {
		ds[s] = Split{
			ID:    fmt.Sprintf("split%d", s),
			Train: part(cfg.Train),
			Valid: part(cfg.Valid),
			Test:  part(cfg.Test),
		}
	}
	return ds
}
