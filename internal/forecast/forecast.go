// Package forecast projects next-year revenue from contracts and the sales pipeline.
package forecast

import (
	"github.com/Dan9191/advisory-service/internal/models"
	"github.com/shopspring/decimal"
)

// BaseCurrency is the currency contract amounts are stored in
const BaseCurrency = "EUR"

// FrequencyMultipliers maps a billing frequency to billing periods per year
var FrequencyMultipliers = map[models.BillingFrequency]int64{
	models.BillingMonthly:    12,
	models.BillingBimonthly:  6,
	models.BillingQuarterly:  4,
	models.BillingSemiannual: 2,
	models.BillingAnnual:     1,
}

// PipelineWeights maps a pipeline stage to its closing probability
var PipelineWeights = map[models.PipelineStage]decimal.Decimal{
	models.StageProposal:    decimal.RequireFromString("0.30"),
	models.StageNegotiation: decimal.RequireFromString("0.60"),
}

// RenewalConfidence derates contracts that are pending renewal
var RenewalConfidence = decimal.RequireFromString("0.70")

const (
	LabelActive   = "Active contracts"
	LabelRenewal  = "Pending renewals"
	LabelPipeline = "Weighted pipeline"
)

// Multiplier returns periods per year for a frequency. Unknown or empty
// frequencies count as annual.
func Multiplier(f models.BillingFrequency) decimal.Decimal {
	m, ok := FrequencyMultipliers[f]
	if !ok {
		return decimal.NewFromInt(1)
	}
	return decimal.NewFromInt(m)
}

// Weight returns the closing probability for a stage and whether the stage
// takes part in the pipeline forecast at all.
func Weight(stage models.PipelineStage) (decimal.Decimal, bool) {
	w, ok := PipelineWeights[stage]
	if !ok {
		return decimal.Zero, false
	}
	return w, true
}

// Compute builds the forecast. Inputs are read only.
func Compute(contracts []models.Contract, pipeline []models.Client) models.Forecast {
	active, renewal, weighted := decimal.Zero, decimal.Zero, decimal.Zero
	var activeCount, renewalCount, pipelineCount int

	for _, c := range contracts {
		annual := c.Amount.Mul(Multiplier(c.BillingFrequency))
		switch c.Status.Normalize() {
		case models.ContractActive:
			active = active.Add(annual)
			activeCount++
		case models.ContractRenewalPending:
			renewal = renewal.Add(annual.Mul(RenewalConfidence))
			renewalCount++
		}
	}

	for _, cl := range pipeline {
		w, ok := Weight(cl.PipelineStage)
		if !ok {
			continue
		}
		weighted = weighted.Add(cl.EstimatedValue.Mul(w))
		pipelineCount++
	}

	return models.Forecast{
		Currency:        BaseCurrency,
		ActiveRevenue:   active,
		RenewalRevenue:  renewal,
		PipelineRevenue: weighted,
		Total:           active.Add(renewal).Add(weighted),
		Sections: []models.ForecastSection{
			{Label: LabelActive, Subtotal: active, Count: activeCount, ProbabilityLabel: "100%"},
			{Label: LabelRenewal, Subtotal: renewal, Count: renewalCount, ProbabilityLabel: "70%"},
			{Label: LabelPipeline, Subtotal: weighted, Count: pipelineCount, ProbabilityLabel: "30-60%"},
		},
	}
}
