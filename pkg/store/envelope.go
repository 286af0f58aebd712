package store

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// SchemaVersion is written into every collection blob. Blobs without a
// version (a bare JSON array) are read as version 0.
const SchemaVersion = 1

type envelope struct {
	SchemaVersion int               `json:"schema_version"`
	Records       []json.RawMessage `json:"records"`
}

func decodeBlob(blob []byte) ([]json.RawMessage, int, error) {
	trimmed := bytes.TrimSpace(blob)
	if len(trimmed) == 0 {
		return nil, SchemaVersion, nil
	}

	if trimmed[0] == '[' {
		var legacy []json.RawMessage
		if err := json.Unmarshal(trimmed, &legacy); err != nil {
			return nil, 0, fmt.Errorf("decode legacy collection: %w", err)
		}
		return legacy, 0, nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, fmt.Errorf("decode collection: %w", err)
	}
	return env.Records, env.SchemaVersion, nil
}

func encodeBlob(records []json.RawMessage) ([]byte, error) {
	if records == nil {
		records = []json.RawMessage{}
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, Records: records})
}
