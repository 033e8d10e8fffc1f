package models

import "github.com/shopspring/decimal"

// PipelineStage is the sales stage of a prospective client
type PipelineStage string

const (
	StageLead        PipelineStage = "lead"
	StageContacted   PipelineStage = "contacted"
	StageProposal    PipelineStage = "proposal"
	StageNegotiation PipelineStage = "negotiation"
	StageClosedWon   PipelineStage = "closed_won"
	StageClosedLost  PipelineStage = "closed_lost"
)

// Client represents a CRM client or prospect
type Client struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Country        string          `json:"country"`
	PipelineStage  PipelineStage   `json:"pipeline_stage"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}
