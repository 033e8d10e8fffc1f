package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ContractStatus is the lifecycle state of a client contract
type ContractStatus string

const (
	ContractActive         ContractStatus = "active"
	ContractRenewalPending ContractStatus = "renewal_pending"
	ContractCancelled      ContractStatus = "cancelled"
	ContractExpired        ContractStatus = "expired"
)

// Normalize maps legacy spellings onto the canonical status values
func (s ContractStatus) Normalize() ContractStatus {
	if s == "pending_renewal" {
		return ContractRenewalPending
	}
	return s
}

// BillingFrequency describes how often a contract is invoiced
type BillingFrequency string

const (
	BillingMonthly    BillingFrequency = "monthly"
	BillingBimonthly  BillingFrequency = "bimonthly"
	BillingQuarterly  BillingFrequency = "quarterly"
	BillingSemiannual BillingFrequency = "semiannual"
	BillingAnnual     BillingFrequency = "annual"
)

// Contract represents a service agreement with a client
type Contract struct {
	ID               int64            `json:"id"`
	ClientID         int64            `json:"client_id"`
	Title            string           `json:"title"`
	Status           ContractStatus   `json:"status"`
	BillingFrequency BillingFrequency `json:"billing_frequency"`
	Amount           decimal.Decimal  `json:"amount"` // Per billing period, EUR
	StartDate        *time.Time       `json:"start_date,omitempty"`
	EndDate          *time.Time       `json:"end_date,omitempty"`
}
