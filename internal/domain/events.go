package domain

import "time"

// Event types
const (
	EventTypeFundCreated          = "fund.created"
	EventTypeInvestorOnboarded    = "investor.onboarded"
	EventTypeCapitalCallIssued    = "capital_call.issued"
	EventTypeDistributionExecuted = "distribution.executed"
)

// Aggregate types
const (
	AggregateTypeFund         = "fund"
	AggregateTypeInvestor     = "investor"
	AggregateTypeCapitalCall  = "capital_call"
	AggregateTypeDistribution = "distribution"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// CapitalCallIssuedEvent payload
type CapitalCallIssuedEvent struct {
	CapitalCallID string            `json:"capital_call_id"`
	FundID        string            `json:"fund_id"`
	Amount        string            `json:"amount"`
	Currency      string            `json:"currency"`
	Allocations   map[string]string `json:"allocations"`
}

// ToPayload converts the event into an outbox payload.
func (e CapitalCallIssuedEvent) ToPayload() map[string]any {
	allocations := make(map[string]any, len(e.Allocations))
	for k, v := range e.Allocations {
		allocations[k] = v
	}
	return map[string]any{
		"capital_call_id": e.CapitalCallID,
		"fund_id":         e.FundID,
		"amount":          e.Amount,
		"currency":        e.Currency,
		"allocations":     allocations,
	}
}

// DistributionExecutedEvent payload
type DistributionExecutedEvent struct {
	DistributionID   string `json:"distribution_id"`
	FundID           string `json:"fund_id"`
	Proceeds         string `json:"proceeds"`
	GPCarry          string `json:"gp_carry"`
	TotalDistributed string `json:"total_distributed"`
	Currency         string `json:"currency"`
}

// ToPayload converts the event into an outbox payload.
func (e DistributionExecutedEvent) ToPayload() map[string]any {
	return map[string]any{
		"distribution_id":   e.DistributionID,
		"fund_id":           e.FundID,
		"proceeds":          e.Proceeds,
		"gp_carry":          e.GPCarry,
		"total_distributed": e.TotalDistributed,
		"currency":          e.Currency,
	}
}
