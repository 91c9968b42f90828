package payload

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a payload file and decodes it into a Payload. JSON is the
// wire format; YAML is accepted for hand-authored fixtures and is
// normalized to the same in-memory shape.
func Load(path string) (Payload, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return DecodeYAML(b)
	default:
		return DecodeJSON(b)
	}
}

// DecodeJSON parses a JSON-encoded payload.
func DecodeJSON(data []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload json: %w", err)
	}
	return p, nil
}

// DecodeYAML parses a YAML-encoded payload.
func DecodeYAML(data []byte) (Payload, error) {
	var p Payload
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse payload yaml: %w", err)
	}
	return p, nil
}
