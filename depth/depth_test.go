package depth

import "testing"

func TestBase(t *testing.T) {
	if d := Base(275000000, 5500000); d != 50 {
		t.Error("problem with base depth calculation", d)
	}
	if d := Base(1000, 1000000); d != 1 {
		t.Error("base depth should floor at 1", d)
	}
	if d := Base(7400000, 5500000); d != 1 {
		t.Error("sub-2x coverage should round down to 1", d)
	}
}

func TestRepeatThreshold(t *testing.T) {
	if c := RepeatThreshold(50, 2); c != 100 {
		t.Error("problem with repeat threshold", c)
	}
	if c := RepeatThreshold(50, 2.5); c != 125 {
		t.Error("problem with fractional multiplier", c)
	}
	if c := RepeatThreshold(1, 0.1); c != 1 {
		t.Error("repeat threshold should floor at 1", c)
	}
}

func TestCoverage(t *testing.T) {
	if cov := Coverage(275000000, 5500000); cov != 50 {
		t.Error("problem with coverage", cov)
	}
}
