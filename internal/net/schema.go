package net

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// BuildStateSchema reflects the per-tick state message into a JSON schema so
// client implementations can validate against the authoritative wire shape.
func BuildStateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(StateMessage))
	schema.Title = "Deadlock State Broadcast"
	schema.Description = fmt.Sprintf("Validates the per-tick state payload, protocol version %d.", Version)
	return schema
}

// SchemaDocument renders the schema plus a content hash. Client builds pin
// the hash and fail fast when the server's contract drifts.
func SchemaDocument() ([]byte, string, error) {
	schema := BuildStateSchema()
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("marshal schema: %w", err)
	}
	sum := sha256.Sum256(data)
	return data, hex.EncodeToString(sum[:]), nil
}
