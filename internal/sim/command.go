// Package sim drives the world with a fixed-timestep loop and funnels client
// intents through a command buffer, so all world mutation happens on the loop
// goroutine.
package sim

import (
	"sync"

	"deadlock/server/internal/geom"
)

// CommandType names a client intent.
type CommandType string

const (
	CommandJoin   CommandType = "join"
	CommandLeave  CommandType = "leave"
	CommandMove   CommandType = "move"
	CommandAim    CommandType = "aim"
	CommandFire   CommandType = "fire"
	CommandReload CommandType = "reload"
	CommandEquip  CommandType = "equip"
)

// Command is one staged intent. Reply, when non-nil, receives the outcome of
// commands that can fail (join, equip); fire-and-forget intents leave it nil.
type Command struct {
	Type   CommandType
	Dir    geom.Vec2
	Weapon string
	Reason string
	Reply  chan error
}

// CommandBuffer stores staged commands in a fixed-size ring. It is safe for
// concurrent producers and a single consumer.
type CommandBuffer struct {
	mu    sync.Mutex
	data  []Command
	head  int
	tail  int
	count int
}

// NewCommandBuffer constructs a ring buffer with the provided capacity.
func NewCommandBuffer(capacity int) *CommandBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &CommandBuffer{data: make([]Command, capacity)}
}

// Push stages a command, returning false if the buffer is full.
func (b *CommandBuffer) Push(cmd Command) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == len(b.data) {
		return false
	}
	b.data[b.tail] = cmd
	b.tail = (b.tail + 1) % len(b.data)
	b.count++
	return true
}

// Drain removes and returns every staged command in arrival order.
func (b *CommandBuffer) Drain() []Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.count == 0 {
		return nil
	}
	drained := make([]Command, 0, b.count)
	for b.count > 0 {
		drained = append(drained, b.data[b.head])
		b.data[b.head] = Command{}
		b.head = (b.head + 1) % len(b.data)
		b.count--
	}
	return drained
}

// Len reports the number of staged commands.
func (b *CommandBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
