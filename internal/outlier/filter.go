package outlier

import "math"

// DefaultThreshold is the z-score cutoff when the caller passes none,
// roughly a 99.7% confidence band under a normality assumption.
const DefaultThreshold = 3.0

// Observation is one numeric sample with opaque metadata for traceability.
type Observation struct {
	Value float64
	Meta  interface{}
}

// Verdict is the classification of one observation.
type Verdict struct {
	Observation Observation
	ZScore      float64
	Accepted    bool
}

// Stats summarizes one filtered batch.
type Stats struct {
	Mean          float64
	StdDev        float64
	AcceptedCount int
	RejectedCount int
}

// Result carries the outcome of one filter pass.
type Result struct {
	Accepted []Verdict
	Rejected []Verdict
	Stats    Stats
}

// Filter classifies a batch by z-score against the threshold. A zero-variance
// batch, including a single element, yields z = 0 for every element so a
// degenerate batch never spuriously rejects everything. Advisory only; it
// catches feed glitches, not adversarial input.
func Filter(obs []Observation, threshold float64) Result {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}

	res := Result{}
	if len(obs) == 0 {
		return res
	}

	var sum float64
	for _, o := range obs {
		sum += o.Value
	}
	mean := sum / float64(len(obs))

	var sqSum float64
	for _, o := range obs {
		d := o.Value - mean
		sqSum += d * d
	}
	stddev := math.Sqrt(sqSum / float64(len(obs)))

	res.Stats.Mean = mean
	res.Stats.StdDev = stddev

	for _, o := range obs {
		z := 0.0
		if stddev > 0 {
			z = math.Abs(o.Value-mean) / stddev
		}
		v := Verdict{Observation: o, ZScore: z, Accepted: z <= threshold}
		if v.Accepted {
			res.Accepted = append(res.Accepted, v)
		} else {
			res.Rejected = append(res.Rejected, v)
		}
	}

	res.Stats.AcceptedCount = len(res.Accepted)
	res.Stats.RejectedCount = len(res.Rejected)
	return res
}

// FilterValues is a convenience wrapper for plain float batches; metadata
// carries the original index.
func FilterValues(values []float64, threshold float64) Result {
	obs := make([]Observation, len(values))
	for i, v := range values {
		obs[i] = Observation{Value: v, Meta: i}
	}
	return Filter(obs, threshold)
}
