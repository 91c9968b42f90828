package payload_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

func validMeta() payload.Metadata {
	return payload.Metadata{
		Version:         schema.Version,
		Level:           2,
		ContentType:     "document",
		GeneratedAt:     time.Now().UTC(),
		SourceHash:      "sha256:abc",
		TokenCount:      180,
		AvailableLevels: []schema.Level{0, 1, 2, 4},
	}
}

func TestMetadataValidate(t *testing.T) {
	m := validMeta()
	if err := m.Validate(); err != nil {
		t.Fatalf("valid metadata rejected: %v", err)
	}
}

func TestMetadataLevelMustBeAvailable(t *testing.T) {
	m := validMeta()
	m.Level = 3
	if err := m.Validate(); err == nil {
		t.Fatal("level outside availableLevels accepted")
	}
}

func TestMetadataRejectsMissingPieces(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*payload.Metadata)
	}{
		{"no version", func(m *payload.Metadata) { m.Version = "" }},
		{"no sourceHash", func(m *payload.Metadata) { m.SourceHash = "" }},
		{"level out of range", func(m *payload.Metadata) { m.Level = 11 }},
	}
	for _, c := range cases {
		m := validMeta()
		c.mutate(&m)
		if err := m.Validate(); err == nil {
			t.Errorf("%s: accepted", c.name)
		}
	}
}

func TestLoadJSONAndMeta(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.l2.json")
	body := `{
		"metadata": {
			"version": "1.0",
			"level": 2,
			"contentType": "document",
			"generatedAt": "2025-06-01T10:00:00Z",
			"sourceHash": "sha256:abc",
			"tokenCount": 180,
			"availableLevels": [0, 1, 2],
			"ttlSeconds": 120
		},
		"title": "T",
		"abstract": "A",
		"units": [{"id": "s1", "type": "section", "tokenEstimate": 90}]
	}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p, err := payload.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	meta, err := p.Meta()
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Level != 2 || meta.SourceHash != "sha256:abc" || meta.TTLSeconds != 120 {
		t.Fatalf("meta = %+v", meta)
	}
	units := p.Units()
	if len(units) != 1 || units[0].ID != "s1" || units[0].TokenEstimate != 90 {
		t.Fatalf("units = %+v", units)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.yaml")
	body := `
metadata:
  version: "1.0"
  level: 0
  contentType: document
  sourceHash: "sha256:def"
  tokenCount: 40
  availableLevels: [0]
title: Hand-authored fixture
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	p, err := payload.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	meta, err := p.Meta()
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if meta.Level != 0 || meta.SourceHash != "sha256:def" {
		t.Fatalf("meta = %+v", meta)
	}
}

func TestMetaMissingBlock(t *testing.T) {
	p := payload.Payload{"title": "no metadata here"}
	if _, err := p.Meta(); err == nil {
		t.Fatal("expected error for missing metadata block")
	}
}

func TestDecodeJSONRejectsGarbage(t *testing.T) {
	if _, err := payload.DecodeJSON([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}
