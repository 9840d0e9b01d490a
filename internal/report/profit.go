package report

import (
	"strings"

	"jobprofit/internal/core"
)

// RateTable is the immutable cost model: per-tech lead rates plus the flat
// support and overhead rates applied to every worked hour.
type RateTable struct {
	leadRates    map[string]float64
	supportRate  float64
	overheadRate float64
}

func NewRateTable(leadRates map[string]float64, supportRate, overheadRate float64) RateTable {
	rates := make(map[string]float64, len(leadRates))
	for name, rate := range leadRates {
		rates[strings.ToLower(name)] = rate
	}
	return RateTable{
		leadRates:    rates,
		supportRate:  supportRate,
		overheadRate: overheadRate,
	}
}

// LeadRate returns the lead rate for the first name with a table entry,
// or 0 when none match. An unknown tech still accrues support and
// overhead cost for hours worked.
func (rt RateTable) LeadRate(names ...string) float64 {
	for _, name := range names {
		if rate, ok := rt.leadRates[strings.ToLower(name)]; ok {
			return rate
		}
	}
	return 0
}

// Calculator derives cost, profit and margin for a month. The rate table
// is fixed at construction.
type Calculator struct {
	rates RateTable
}

func NewCalculator(rates RateTable) *Calculator {
	return &Calculator{rates: rates}
}

// Compute returns (totalCost, profit, margin) for the given revenue and
// worked hours. Margin is a percentage, 0 when there is no revenue.
// Values are rounded per the report contract: money 2dp, margin 1dp.
func (c *Calculator) Compute(revenue, workedHours float64, names ...string) (totalCost, profit, margin float64) {
	hourlyCost := c.rates.LeadRate(names...) + c.rates.supportRate + c.rates.overheadRate
	totalCost = core.Round2(workedHours * hourlyCost)
	profit = core.Round2(revenue - totalCost)
	if revenue > 0 {
		margin = core.Round1(profit / revenue * 100)
	}
	return totalCost, profit, margin
}
