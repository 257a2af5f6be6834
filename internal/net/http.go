package net

import (
	"encoding/json"
	"log"
	nethttp "net/http"
)

// NewMux wires the HTTP surface: the websocket endpoint, the wire-contract
// schema, and a health probe.
func NewMux(hub *Hub, logger *log.Logger) (*nethttp.ServeMux, error) {
	if logger == nil {
		logger = log.Default()
	}

	schemaDoc, schemaHash, err := SchemaDocument()
	if err != nil {
		return nil, err
	}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/ws", hub.Handle)

	mux.HandleFunc("/schema", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/schema+json")
		w.Header().Set("X-Contract-Hash", schemaHash)
		w.Write(schemaDoc)
	})

	mux.HandleFunc("/healthz", func(w nethttp.ResponseWriter, r *nethttp.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "ok",
			"version": Version,
			"clients": hub.ClientCount(),
			"tick":    hub.loop.World().Tick(),
		})
	})

	return mux, nil
}
