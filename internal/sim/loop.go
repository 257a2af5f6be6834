package sim

import (
	"context"
	"time"

	"deadlock/server/internal/telemetry"
	"deadlock/server/internal/world"
	"deadlock/server/logging"
	logsim "deadlock/server/logging/simulation"
)

// Config tunes the tick loop.
type Config struct {
	TickRate        int
	CatchupMaxTicks int
	CommandCapacity int
}

// StepResult is handed to the AfterTick hook once per ticker fire.
type StepResult struct {
	Stats    world.StepStats
	Snapshot world.Snapshot
	Steps    int
	Duration time.Duration
	Budget   time.Duration
}

// Hooks let the transport layer observe the loop without reaching into it.
type Hooks struct {
	AfterTick func(result StepResult)
}

// Loop owns the world and advances it in fixed steps. A late frame is caught
// up with additional fixed steps rather than one oversized delta, so movement
// and collision results stay independent of wall-clock jitter; backlogs past
// the catchup cap are dropped.
type Loop struct {
	world     *world.World
	cfg       Config
	buffer    *CommandBuffer
	hooks     Hooks
	pub       logging.Publisher
	collector *telemetry.Collector
	clock     logging.Clock
}

// NewLoop wires the world to a command buffer and telemetry collector. The
// collector may be nil.
func NewLoop(w *world.World, cfg Config, hooks Hooks, collector *telemetry.Collector, pub logging.Publisher) *Loop {
	if pub == nil {
		pub = logging.NopPublisher()
	}
	capacity := cfg.CommandCapacity
	if capacity <= 0 {
		capacity = 256
	}
	return &Loop{
		world:     w,
		cfg:       cfg,
		buffer:    NewCommandBuffer(capacity),
		hooks:     hooks,
		pub:       pub,
		collector: collector,
		clock:     logging.SystemClock{},
	}
}

// World exposes the underlying world for read-only surfaces that are
// immutable after construction, such as the map snapshot.
func (l *Loop) World() *world.World { return l.world }

// Enqueue stages a client command for the next tick. It reports false when
// the buffer is saturated; the caller decides whether dropping is acceptable.
func (l *Loop) Enqueue(cmd Command) bool {
	return l.buffer.Push(cmd)
}

// Run drives the loop until the context is cancelled.
func (l *Loop) Run(ctx context.Context) {
	tickRate := l.cfg.TickRate
	if tickRate <= 0 {
		tickRate = 60
	}
	budget := time.Second / time.Duration(tickRate)
	dt := 1.0 / float64(tickRate)
	maxCatchup := l.cfg.CatchupMaxTicks
	if maxCatchup < 1 {
		maxCatchup = 1
	}

	ticker := time.NewTicker(budget)
	defer ticker.Stop()

	last := l.clock.Now()
	accumulator := 0.0

	for {
		select {
		case <-ctx.Done():
			l.collector.Close()
			return
		case <-ticker.C:
			now := l.clock.Now()
			accumulator += now.Sub(last).Seconds()
			last = now

			l.applyCommands(ctx)

			pending := int(accumulator / dt)
			if pending > maxCatchup {
				// A long stall would otherwise replay the whole backlog in
				// one burst; drop it and resume in real time.
				logsim.CatchupClamped(ctx, l.pub, l.world.Tick(), logsim.CatchupClampedPayload{
					PendingTicks: pending,
					MaxTicks:     maxCatchup,
				})
				accumulator = float64(maxCatchup) * dt
			}

			steps := 0
			var stats world.StepStats
			var total time.Duration
			for accumulator >= dt {
				start := l.clock.Now()
				stats = l.world.Step(ctx, dt)
				stepDur := l.clock.Now().Sub(start)
				total += stepDur
				accumulator -= dt
				steps++

				if stepDur > budget {
					logsim.TickBudgetOverrun(ctx, l.pub, stats.Tick, logsim.TickBudgetOverrunPayload{
						DurationMillis: stepDur.Milliseconds(),
						BudgetMillis:   budget.Milliseconds(),
						Ratio:          float64(stepDur) / float64(budget),
					})
				}
				l.collector.Record(telemetry.Sample{
					Tick:           stats.Tick,
					ElapsedSeconds: stats.Elapsed,
					Entities:       stats.Entities,
					Zombies:        stats.Zombies,
					Projectiles:    stats.Projectiles,
					Pickups:        stats.Pickups,
					PairEvents:     stats.PairEvents,
					ObstacleClamps: stats.ObstacleClamps,
					ProjectileHits: stats.ProjectileHits,
					Removed:        stats.Removed,
					Score:          stats.Score,
					StepMillis:     float64(stepDur.Microseconds()) / 1000,
				})
			}

			if steps > 0 && l.hooks.AfterTick != nil {
				l.hooks.AfterTick(StepResult{
					Stats:    stats,
					Snapshot: l.world.Snapshot(),
					Steps:    steps,
					Duration: total,
					Budget:   budget,
				})
			}
		}
	}
}

// applyCommands drains the buffer and mutates the world on the loop
// goroutine. Unknown command types are ignored.
func (l *Loop) applyCommands(ctx context.Context) {
	for _, cmd := range l.buffer.Drain() {
		var err error
		switch cmd.Type {
		case CommandJoin:
			_, err = l.world.SpawnPlayer(ctx)
		case CommandLeave:
			l.world.RemovePlayer(ctx, cmd.Reason)
		case CommandMove:
			l.world.SetMoveIntent(cmd.Dir)
		case CommandAim:
			l.world.SetAim(cmd.Dir)
		case CommandFire:
			l.world.SetAim(cmd.Dir)
			l.world.TriggerFire()
		case CommandReload:
			l.world.TriggerReload()
		case CommandEquip:
			err = l.world.EquipWeapon(cmd.Weapon)
		}
		if cmd.Reply != nil {
			cmd.Reply <- err
		}
	}
}
