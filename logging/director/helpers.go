// Package director defines the structured events for the spawn director.
package director

import (
	"context"

	"deadlock/server/logging"
)

const (
	EventSpawnSkipped logging.EventType = "director.spawn_skipped"
	EventStageEntered logging.EventType = "director.stage_entered"
)

// SpawnSkippedPayload explains why a scheduled spawn was abandoned.
type SpawnSkippedPayload struct {
	Attempts  int    `json:"attempts"`
	Archetype string `json:"archetype"`
	Reason    string `json:"reason"`
}

// SpawnSkipped publishes a warning when the director could not place a zombie.
func SpawnSkipped(ctx context.Context, pub logging.Publisher, tick uint64, payload SpawnSkippedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSpawnSkipped,
		Tick:     tick,
		Severity: logging.SeverityWarn,
		Category: logging.CategoryDirector,
		Payload:  payload,
	})
}

// StageEnteredPayload names the composition stage the director switched to.
type StageEnteredPayload struct {
	StartSeconds float64            `json:"startSeconds"`
	Weights      map[string]float64 `json:"weights"`
}

// StageEntered publishes an info event when the composition stage changes.
func StageEntered(ctx context.Context, pub logging.Publisher, tick uint64, payload StageEnteredPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStageEntered,
		Tick:     tick,
		Severity: logging.SeverityInfo,
		Category: logging.CategoryDirector,
		Payload:  payload,
	})
}
