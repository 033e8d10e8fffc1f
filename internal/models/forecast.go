package models

import "github.com/shopspring/decimal"

// ForecastSection is one category of the revenue forecast
type ForecastSection struct {
	Label            string          `json:"label"`
	Subtotal         decimal.Decimal `json:"subtotal"`
	Count            int             `json:"count"`
	ProbabilityLabel string          `json:"probability_label"`
}

// Forecast represents the projected revenue for the next twelve months
type Forecast struct {
	Currency        string            `json:"currency"`
	ActiveRevenue   decimal.Decimal   `json:"active_revenue"`
	RenewalRevenue  decimal.Decimal   `json:"renewal_revenue"`
	PipelineRevenue decimal.Decimal   `json:"pipeline_revenue"`
	Total           decimal.Decimal   `json:"total"`
	Sections        []ForecastSection `json:"sections"`
}
