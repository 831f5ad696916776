package netstats

import "testing"

func TestSamplerAggregates(t *testing.T) {
	var s Sampler
	s.Sample(4)
	s.Sample(10)
	s.Sample(1)

	if s.Count() != 3 {
		t.Fatalf("expected count 3, got %d", s.Count())
	}
	if s.Sum() != 15 {
		t.Fatalf("expected sum 15, got %v", s.Sum())
	}
	if s.Min() != 1 {
		t.Fatalf("expected min 1, got %v", s.Min())
	}
	if s.Max() != 10 {
		t.Fatalf("expected max 10, got %v", s.Max())
	}
	if got := s.Average(); got != 5 {
		t.Fatalf("expected average 5, got %v", got)
	}
}

func TestSamplerEmptyAverage(t *testing.T) {
	var s Sampler
	if s.Average() != 0 {
		t.Fatalf("expected average of an empty sampler to be 0")
	}
}

func TestScalarIncrement(t *testing.T) {
	var c Scalar
	c.Inc()
	c.Add(4)
	if c.Value() != 5 {
		t.Fatalf("expected value 5, got %d", c.Value())
	}
}

func TestRingHealthDecay(t *testing.T) {
	rh := NewRingHealth(10)
	rh.Flag(2, 100)

	if !rh.IsFlagged(2, 105) {
		t.Fatalf("expected node 2 still flagged within decay window")
	}
	if rh.IsFlagged(2, 111) {
		t.Fatalf("expected node 2 to have decayed out by cycle 111")
	}
	if rh.IsFlagged(2, 105+1000) {
		t.Fatalf("should not re-flag after already decayed")
	}
}

func TestRingHealthFlaggedCountPrunes(t *testing.T) {
	rh := NewRingHealth(5)
	rh.Flag(0, 0)
	rh.Flag(1, 0)
	if got := rh.FlaggedCount(3); got != 2 {
		t.Fatalf("expected 2 flagged nodes at cycle 3, got %d", got)
	}
	if got := rh.FlaggedCount(10); got != 0 {
		t.Fatalf("expected both to have decayed by cycle 10, got %d", got)
	}
}
