package core

import "testing"

func TestRounding(t *testing.T) {
	if got := Round2(2806.39999); got != 2806.40 {
		t.Errorf("Round2 = %v, want 2806.40", got)
	}
	if got := Round2(-1806.404); got != -1806.40 {
		t.Errorf("Round2 = %v, want -1806.40", got)
	}
	if got := Round1(-180.64); got != -180.6 {
		t.Errorf("Round1 = %v, want -180.6", got)
	}
	if got := Round1(87.25); got != 87.3 {
		t.Errorf("Round1 = %v, want 87.3", got)
	}
	if got := RoundDollars(1234.56); got != 1235 {
		t.Errorf("RoundDollars = %v, want 1235", got)
	}
}
