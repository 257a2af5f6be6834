// Package navigation defines the structured events for zombie steering.
package navigation

import (
	"context"

	"deadlock/server/logging"
)

const (
	EventProbeStarted logging.EventType = "navigation.probe_started"
	EventProbeHold    logging.EventType = "navigation.probe_hold"
)

// ProbeStartedPayload records the detour a stuck zombie committed to.
type ProbeStartedPayload struct {
	AngleDegrees float64 `json:"angleDegrees"`
	StuckTicks   int     `json:"stuckTicks"`
}

// ProbeStarted publishes a debug event when a zombie enters probing.
func ProbeStarted(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ProbeStartedPayload) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProbeStarted,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
		Payload:  payload,
	})
}

// ProbeHold publishes a debug event when every probe direction was blocked and
// the zombie waits in place before retrying.
func ProbeHold(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventProbeHold,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: logging.CategoryNavigation,
	})
}
