// Package stats accumulates summary statistics over a stream of scores.
package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Calc exponential moving average over approx. the last n values
type EMA float64

func (e EMA) Add(val, n float64) float64 {
	if e == 0 {
		return val
	}
	k := 2.0 / (n + 1.0)
	return val*k + float64(e)*(1-k)
}

// Running mean and stddev as per http://www.johndcook.com/blog/standard_deviation/
type Average struct {
	Count, Mean float64
	Var, StdDev float64
	oldM, oldV  float64
}

func (s *Average) Add(x float64) {
	s.Count++
	if s.Count == 1 {
		s.oldM, s.Mean = x, x
		s.oldV = 0
	} else {
		s.Mean = s.oldM + (x-s.oldM)/s.Count
		s.Var = s.oldV + (x-s.oldM)*(x-s.Mean)
		s.oldM, s.oldV = s.Mean, s.Var
		if s.Count > 1 {
			s.StdDev = math.Sqrt(s.Var / (s.Count - 1))
		}
	}
}

func (s *Average) String() string {
	if s.StdDev < 0.0005 {
		return fmt.Sprintf("%.3f", s.Mean)
	}
	return fmt.Sprintf("%.3f ±%.3f", s.Mean, s.StdDev)
}

// Summary holds the order statistics for a batch of scores.
type Summary struct {
	Count                    int
	Mean, StdDev             float64
	Min, Q1, Median, Q3, Max float64
}

// Summarize calculates summary statistics over the given scores. Quantiles
// are empirical so the values reported are ones which occur in the input.
func Summarize(scores []float64) Summary {
	s := Summary{Count: len(scores)}
	if s.Count == 0 {
		return s
	}
	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	s.Mean = stat.Mean(sorted, nil)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	s.Min, s.Max = sorted[0], sorted[len(sorted)-1]
	s.Q1 = stat.Quantile(0.25, stat.Empirical, sorted, nil)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.Q3 = stat.Quantile(0.75, stat.Empirical, sorted, nil)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("n=%d  mean=%.4f ±%.4f  min=%.4f  median=%.4f  max=%.4f",
		s.Count, s.Mean, s.StdDev, s.Min, s.Median, s.Max)
}
