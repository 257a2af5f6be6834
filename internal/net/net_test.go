package net

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"deadlock/server/internal/config"
	"deadlock/server/internal/geom"
	"deadlock/server/internal/sim"
	"deadlock/server/internal/world"
	"deadlock/server/logging"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	w := world.New(config.Default(), logging.NopPublisher())
	loop := sim.NewLoop(w, sim.Config{TickRate: 60, CatchupMaxTicks: 4}, sim.Hooks{}, nil, logging.NopPublisher())
	return NewHub(loop, nil)
}

func TestSchemaDocumentIsStable(t *testing.T) {
	doc1, hash1, err := SchemaDocument()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	_, hash2, err := SchemaDocument()
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if hash1 != hash2 {
		t.Fatalf("contract hash not reproducible: %s vs %s", hash1, hash2)
	}

	var schema map[string]any
	if err := json.Unmarshal(doc1, &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	if title, _ := schema["title"].(string); !strings.Contains(title, "State") {
		t.Fatalf("unexpected schema title %q", title)
	}
}

func TestSchemaEndpointServesContract(t *testing.T) {
	hub := newTestHub(t)
	mux, err := NewMux(hub, nil)
	if err != nil {
		t.Fatalf("mux: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/schema", nil))

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Contract-Hash") == "" {
		t.Fatalf("missing contract hash header")
	}
	var schema map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &schema); err != nil {
		t.Fatalf("schema body: %v", err)
	}
}

func TestHealthEndpoint(t *testing.T) {
	hub := newTestHub(t)
	mux, err := NewMux(hub, nil)
	if err != nil {
		t.Fatalf("mux: %v", err)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("status = %v", body["status"])
	}
}

func TestCommandForMapping(t *testing.T) {
	cmd, ok := commandFor(ClientMessage{Type: TypeInput, DX: 1, DY: -1})
	if !ok || cmd.Type != sim.CommandMove || cmd.Dir != (geom.Vec2{X: 1, Y: -1}) {
		t.Fatalf("input mapping = %+v ok=%v", cmd, ok)
	}

	cmd, ok = commandFor(ClientMessage{Type: TypeEquip, Weapon: "shotgun"})
	if !ok || cmd.Type != sim.CommandEquip || cmd.Weapon != "shotgun" {
		t.Fatalf("equip mapping = %+v ok=%v", cmd, ok)
	}

	if _, ok := commandFor(ClientMessage{Type: "teleport"}); ok {
		t.Fatalf("unknown message type should be ignored")
	}
}

func TestEncodeStateRoundTrips(t *testing.T) {
	w := world.New(config.Default(), logging.NopPublisher())
	data, err := EncodeState(w.Snapshot())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var msg StateMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if msg.Type != TypeState {
		t.Fatalf("type = %q", msg.Type)
	}
}
