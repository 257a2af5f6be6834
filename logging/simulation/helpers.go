// Package simulation defines the structured events the tick loop emits.
package simulation

import (
	"context"

	"deadlock/server/logging"
)

const (
	// EventTickBudgetOverrun is emitted when a tick exceeds its time budget.
	EventTickBudgetOverrun logging.EventType = "simulation.tick_budget_overrun"
	// EventCatchupClamped is emitted when the loop drops backlog ticks after a stall.
	EventCatchupClamped logging.EventType = "simulation.catchup_clamped"
)

// TickBudgetOverrunPayload captures the timing of a budget breach.
type TickBudgetOverrunPayload struct {
	DurationMillis int64   `json:"durationMillis"`
	BudgetMillis   int64   `json:"budgetMillis"`
	Ratio          float64 `json:"ratio"`
}

// TickBudgetOverrun publishes a warning when a tick ran over budget.
func TickBudgetOverrun(ctx context.Context, pub logging.Publisher, tick uint64, payload TickBudgetOverrunPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventTickBudgetOverrun,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}

// CatchupClampedPayload captures how many pending ticks were discarded.
type CatchupClampedPayload struct {
	PendingTicks int `json:"pendingTicks"`
	MaxTicks     int `json:"maxTicks"`
}

// CatchupClamped publishes a warning when the fixed-step accumulator gave up
// on catching up in full.
func CatchupClamped(ctx context.Context, pub logging.Publisher, tick uint64, payload CatchupClampedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventCatchupClamped,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  payload,
	})
}
