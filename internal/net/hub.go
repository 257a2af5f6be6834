package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
	"sync"

	"github.com/gorilla/websocket"

	"deadlock/server/internal/geom"
	"deadlock/server/internal/sim"
)

const sendQueueSize = 16

// client is one websocket subscriber. The controller drives the player;
// everyone else spectates.
type client struct {
	conn        *websocket.Conn
	send        chan []byte
	controlling bool
}

// Hub fans the per-tick snapshot out to every connected client and feeds the
// controller's intents into the simulation loop.
type Hub struct {
	loop   *sim.Loop
	logger *log.Logger

	upgrader websocket.Upgrader

	mu         sync.Mutex
	clients    map[*client]struct{}
	controller *client
}

// NewHub wires the websocket surface to the loop.
func NewHub(loop *sim.Loop, logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	return &Hub{
		loop:   loop,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *nethttp.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Broadcast sends the encoded state to every client. Clients that cannot
// keep up have their queue dropped on the floor; the next tick supersedes
// whatever they missed.
func (h *Hub) Broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Handle upgrades an HTTP request to a websocket session.
func (h *Hub) Handle(w nethttp.ResponseWriter, r *nethttp.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("websocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendQueueSize)}

	h.mu.Lock()
	takeControl := h.controller == nil
	if takeControl {
		h.controller = c
		c.controlling = true
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if takeControl {
		reply := make(chan error, 1)
		h.loop.Enqueue(sim.Command{Type: sim.CommandJoin, Reply: reply})
		if err := <-reply; err != nil {
			h.logger.Printf("join rejected: %v", err)
			h.drop(c, "join rejected")
			return
		}
	}

	go h.writePump(c)

	if err := h.sendWelcome(c); err != nil {
		h.drop(c, "welcome failed")
		return
	}

	h.readPump(c)
}

func (h *Hub) sendWelcome(c *client) error {
	joined, err := json.Marshal(JoinedMessage{
		Type:        TypeJoined,
		Version:     Version,
		Controlling: c.controlling,
		Weapons:     h.loop.World().WeaponNames(),
	})
	if err != nil {
		return err
	}
	mapMsg, err := json.Marshal(MapMessage{Type: TypeMap, Map: h.loop.World().MapSnapshot()})
	if err != nil {
		return err
	}
	c.send <- joined
	c.send <- mapMsg
	return nil
}

// readPump parses client intents until the connection dies. Malformed
// messages are discarded, not fatal.
func (h *Hub) readPump(c *client) {
	defer h.drop(c, "connection closed")
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if !c.controlling {
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Printf("discarding malformed message: %v", err)
			continue
		}

		cmd, ok := commandFor(msg)
		if !ok {
			continue
		}
		if !h.loop.Enqueue(cmd) {
			// Buffer saturated: drop the intent, the client resends state
			// every frame anyway.
			continue
		}
	}
}

func commandFor(msg ClientMessage) (sim.Command, bool) {
	dir := geom.Vec2{X: msg.DX, Y: msg.DY}
	switch msg.Type {
	case TypeInput:
		return sim.Command{Type: sim.CommandMove, Dir: dir}, true
	case TypeAim:
		return sim.Command{Type: sim.CommandAim, Dir: dir}, true
	case TypeFire:
		return sim.Command{Type: sim.CommandFire, Dir: dir}, true
	case TypeReload:
		return sim.Command{Type: sim.CommandReload}, true
	case TypeEquip:
		return sim.Command{Type: sim.CommandEquip, Weapon: msg.Weapon}, true
	default:
		return sim.Command{}, false
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// drop unregisters a client. When the controller leaves, the player is
// removed and the next connecting client takes over.
func (h *Hub) drop(c *client, reason string) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	wasController := h.controller == c
	if wasController {
		h.controller = nil
	}
	h.mu.Unlock()

	if !present {
		return
	}
	close(c.send)
	c.conn.Close()

	if wasController {
		h.loop.Enqueue(sim.Command{Type: sim.CommandLeave, Reason: reason})
	}
}

// ClientCount reports connected clients, for the health endpoint.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
