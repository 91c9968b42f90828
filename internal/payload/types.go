package payload

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

// MetadataKey is the top-level payload key holding the metadata block.
const MetadataKey = "metadata"

// Wire field names of the metadata block. These are exact and
// case-sensitive; other implementations must match them byte for byte.
const (
	FieldVersion         = "version"
	FieldLevel           = "level"
	FieldContentType     = "contentType"
	FieldGeneratedAt     = "generatedAt"
	FieldSourceHash      = "sourceHash"
	FieldTokenCount      = "tokenCount"
	FieldAvailableLevels = "availableLevels"
	FieldTTLSeconds      = "ttlSeconds"
)

// Metadata is attached to every payload. SourceHash is stable across all
// levels generated from the same source content and forms the cache key
// together with Level.
type Metadata struct {
	Version         string         `json:"version" yaml:"version"`
	Level           schema.Level   `json:"level" yaml:"level"`
	ContentType     string         `json:"contentType" yaml:"contentType"`
	GeneratedAt     time.Time      `json:"generatedAt" yaml:"generatedAt"`
	SourceHash      string         `json:"sourceHash" yaml:"sourceHash"`
	TokenCount      int            `json:"tokenCount" yaml:"tokenCount"`
	AvailableLevels []schema.Level `json:"availableLevels" yaml:"availableLevels"`
	TTLSeconds      int            `json:"ttlSeconds,omitempty" yaml:"ttlSeconds,omitempty"`
}

// Validate checks the metadata invariants: a version, a valid level that
// appears in the available-levels list, and a non-empty source hash.
func (m *Metadata) Validate() error {
	if m == nil {
		return errors.New("metadata is nil")
	}
	if m.Version == "" {
		return errors.New("metadata missing version")
	}
	if !schema.Valid(m.Level) {
		return fmt.Errorf("metadata level %d out of range", m.Level)
	}
	if m.SourceHash == "" {
		return errors.New("metadata missing sourceHash")
	}
	for _, l := range m.AvailableLevels {
		if l == m.Level {
			return nil
		}
	}
	return fmt.Errorf("metadata level %d not in availableLevels %v", m.Level, m.AvailableLevels)
}

// ContentUnit references an addressable sub-part of the content (a
// section, message, function, table, ...). Units with a ParentID form a
// forest rooted at the units without one.
type ContentUnit struct {
	ID            string `json:"id" yaml:"id"`
	Type          string `json:"type" yaml:"type"`
	ParentID      string `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	TokenEstimate int    `json:"tokenEstimate" yaml:"tokenEstimate"`
	Preview       string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

// Payload is a decoded level payload: the field set realized for a
// content item at a given level, plus its metadata block. Payloads are
// immutable snapshots produced by the ingestion side; this package only
// reads them.
type Payload map[string]any

// Meta decodes the metadata block into its typed form.
func (p Payload) Meta() (Metadata, error) {
	raw, ok := p[MetadataKey]
	if !ok {
		return Metadata{}, errors.New("payload has no metadata block")
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return Metadata{}, fmt.Errorf("encode metadata: %w", err)
	}
	var m Metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return Metadata{}, fmt.Errorf("decode metadata: %w", err)
	}
	return m, nil
}

// Units decodes the "units" field into typed content units. Missing or
// malformed unit lists yield nil; shape errors are the validator's job.
func (p Payload) Units() []ContentUnit {
	raw, ok := p["units"]
	if !ok {
		return nil
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return nil
	}
	var units []ContentUnit
	if err := json.Unmarshal(b, &units); err != nil {
		return nil
	}
	return units
}
