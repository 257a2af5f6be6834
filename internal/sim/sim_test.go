package sim

import (
	"context"
	"testing"

	"deadlock/server/internal/config"
	"deadlock/server/internal/geom"
	"deadlock/server/internal/world"
	"deadlock/server/logging"
)

func TestCommandBufferRing(t *testing.T) {
	b := NewCommandBuffer(3)

	for i := 0; i < 3; i++ {
		if !b.Push(Command{Type: CommandMove}) {
			t.Fatalf("push %d rejected below capacity", i)
		}
	}
	if b.Push(Command{Type: CommandFire}) {
		t.Fatalf("push accepted at capacity")
	}
	if b.Len() != 3 {
		t.Fatalf("len = %d, want 3", b.Len())
	}

	drained := b.Drain()
	if len(drained) != 3 {
		t.Fatalf("drained %d, want 3", len(drained))
	}
	if b.Len() != 0 {
		t.Fatalf("buffer not empty after drain")
	}
	if b.Drain() != nil {
		t.Fatalf("empty drain should return nil")
	}

	// The ring must wrap cleanly after a full cycle.
	b.Push(Command{Type: CommandReload})
	if got := b.Drain(); len(got) != 1 || got[0].Type != CommandReload {
		t.Fatalf("wraparound drain = %+v", got)
	}
}

func newTestLoop(t *testing.T) *Loop {
	t.Helper()
	w := world.New(config.Default(), logging.NopPublisher())
	return NewLoop(w, Config{TickRate: 60, CatchupMaxTicks: 4}, Hooks{}, nil, logging.NopPublisher())
}

func TestApplyCommandsJoinAndIntents(t *testing.T) {
	l := newTestLoop(t)
	ctx := context.Background()

	reply := make(chan error, 1)
	l.Enqueue(Command{Type: CommandJoin, Reply: reply})
	l.Enqueue(Command{Type: CommandMove, Dir: geom.Vec2{X: 1}})
	l.applyCommands(ctx)

	if err := <-reply; err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if l.World().Player() == nil {
		t.Fatalf("join did not spawn a player")
	}

	l.World().Step(ctx, 1.0/60)
	if l.World().Player().Vel.X <= 0 {
		t.Fatalf("move intent not applied")
	}
}

func TestApplyCommandsEquipErrors(t *testing.T) {
	l := newTestLoop(t)
	ctx := context.Background()

	join := make(chan error, 1)
	l.Enqueue(Command{Type: CommandJoin, Reply: join})
	l.applyCommands(ctx)
	<-join

	reply := make(chan error, 1)
	l.Enqueue(Command{Type: CommandEquip, Weapon: "railgun", Reply: reply})
	l.applyCommands(ctx)
	if err := <-reply; err == nil {
		t.Fatalf("equipping an unknown weapon should fail")
	}

	reply = make(chan error, 1)
	l.Enqueue(Command{Type: CommandEquip, Weapon: "shotgun", Reply: reply})
	l.applyCommands(ctx)
	if err := <-reply; err != nil {
		t.Fatalf("equip shotgun: %v", err)
	}
	if weapon, _, _ := l.World().Loadout(); weapon != "shotgun" {
		t.Fatalf("loadout = %q, want shotgun", weapon)
	}
}

func TestSecondJoinRejected(t *testing.T) {
	l := newTestLoop(t)
	ctx := context.Background()

	first := make(chan error, 1)
	second := make(chan error, 1)
	l.Enqueue(Command{Type: CommandJoin, Reply: first})
	l.Enqueue(Command{Type: CommandJoin, Reply: second})
	l.applyCommands(ctx)

	if err := <-first; err != nil {
		t.Fatalf("first join: %v", err)
	}
	if err := <-second; err == nil {
		t.Fatalf("second join should be rejected while the first player lives")
	}
}
