package report

import "testing"

func testRates() RateTable {
	return NewRateTable(map[string]float64{
		"Alice Smith": 35.39,
		"Bob Jones":   24.76,
	}, 16.70, 18.07)
}

func TestCalculatorCompute(t *testing.T) {
	calc := NewCalculator(testRates())

	// 40h * (35.39 + 16.70 + 18.07) = 2806.40 cost against 1000 revenue.
	cost, profit, margin := calc.Compute(1000, 40, "Alice Smith")
	if cost != 2806.40 {
		t.Errorf("cost = %v, want 2806.40", cost)
	}
	if profit != -1806.40 {
		t.Errorf("profit = %v, want -1806.40", profit)
	}
	if margin != -180.6 {
		t.Errorf("margin = %v, want -180.6", margin)
	}
}

func TestCalculatorUnknownTechStillAccruesOverhead(t *testing.T) {
	calc := NewCalculator(testRates())

	cost, profit, margin := calc.Compute(0, 10, "Nobody")
	if cost != 347.70 { // 10 * (16.70 + 18.07)
		t.Errorf("cost = %v, want 347.70", cost)
	}
	if profit != -347.70 {
		t.Errorf("profit = %v, want -347.70", profit)
	}
	if margin != 0 {
		t.Errorf("margin = %v, want 0 with no revenue", margin)
	}
}

func TestCalculatorNameFallback(t *testing.T) {
	calc := NewCalculator(testRates())

	// First name without a rate falls through to the second.
	costShort, _, _ := calc.Compute(100, 1, "bob", "Bob Jones")
	costFull, _, _ := calc.Compute(100, 1, "Bob Jones")
	if costShort != costFull {
		t.Errorf("fallback cost = %v, direct cost = %v", costShort, costFull)
	}
}

func TestRateTableCaseInsensitive(t *testing.T) {
	rates := testRates()
	if got := rates.LeadRate("ALICE SMITH"); got != 35.39 {
		t.Errorf("LeadRate = %v, want 35.39", got)
	}
	if got := rates.LeadRate("nobody"); got != 0 {
		t.Errorf("LeadRate for unknown = %v, want 0", got)
	}
}
