package outlier

import (
	"math"
	"testing"
)

func TestZeroVarianceAcceptsAll(t *testing.T) {
	res := FilterValues([]float64{100, 100, 100, 100}, 3)
	if len(res.Rejected) != 0 {
		t.Fatalf("zero-variance batch rejected %d elements", len(res.Rejected))
	}
	if len(res.Accepted) != 4 {
		t.Fatalf("expected 4 accepted, got %d", len(res.Accepted))
	}
	for _, v := range res.Accepted {
		if v.ZScore != 0 {
			t.Fatalf("expected z-score 0, got %v", v.ZScore)
		}
	}
}

func TestSingleElementAccepted(t *testing.T) {
	res := FilterValues([]float64{42}, 3)
	if len(res.Accepted) != 1 || len(res.Rejected) != 0 {
		t.Fatalf("single element must be accepted: %+v", res.Stats)
	}
	if res.Accepted[0].ZScore != 0 {
		t.Fatalf("expected z-score 0, got %v", res.Accepted[0].ZScore)
	}
}

func TestEmptyBatch(t *testing.T) {
	res := FilterValues(nil, 3)
	if len(res.Accepted) != 0 || len(res.Rejected) != 0 {
		t.Fatalf("empty batch should produce empty result")
	}
}

func TestKnownOutlierRejected(t *testing.T) {
	// A misplaced decimal: 1000 became 100000.
	values := []float64{980, 1000, 1010, 1020, 990, 1005, 995, 1015, 985, 100000}
	res := FilterValues(values, 2)

	if len(res.Rejected) != 1 {
		t.Fatalf("expected exactly 1 rejected, got %d", len(res.Rejected))
	}
	if res.Rejected[0].Observation.Value != 100000 {
		t.Fatalf("rejected the wrong value: %v", res.Rejected[0].Observation.Value)
	}
	if idx, ok := res.Rejected[0].Observation.Meta.(int); !ok || idx != 9 {
		t.Fatalf("metadata index lost: %v", res.Rejected[0].Observation.Meta)
	}
}

func TestStats(t *testing.T) {
	res := FilterValues([]float64{2, 4, 4, 4, 5, 5, 7, 9}, 3)
	if res.Stats.Mean != 5 {
		t.Fatalf("mean: got %v, want 5", res.Stats.Mean)
	}
	if math.Abs(res.Stats.StdDev-2) > 1e-9 {
		t.Fatalf("population stddev: got %v, want 2", res.Stats.StdDev)
	}
	if res.Stats.AcceptedCount+res.Stats.RejectedCount != 8 {
		t.Fatalf("counts do not sum: %+v", res.Stats)
	}
}

func TestDefaultThreshold(t *testing.T) {
	// threshold <= 0 falls back to the default
	a := FilterValues([]float64{1, 2, 3, 4, 100}, 0)
	b := FilterValues([]float64{1, 2, 3, 4, 100}, DefaultThreshold)
	if len(a.Accepted) != len(b.Accepted) || len(a.Rejected) != len(b.Rejected) {
		t.Fatalf("default threshold not applied")
	}
}
