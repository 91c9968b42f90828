package server

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/validate"
)

type entry struct {
	data []byte
	meta payload.Metadata
}

// Store holds the pre-rendered payloads the server publishes, keyed by
// (sourceHash, level). It is populated once at startup and read-only
// afterwards, so handlers may share it without synchronization.
type Store struct {
	items map[string]map[schema.Level]entry
}

// LoadDir reads every *.json payload in dir and certifies it against its
// declared level before publishing. Payloads that fail certification are
// skipped with a warning: an invalid pre-rendered file must never be
// served, but it should not take the rest of the content down with it.
func LoadDir(dir string, reg *schema.Registry, log zerolog.Logger) (*Store, error) {
	names, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan payload dir: %w", err)
	}
	s := &Store{items: make(map[string]map[schema.Level]entry)}
	for _, name := range names {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("read payload %s: %w", name, err)
		}
		p, err := payload.DecodeJSON(data)
		if err != nil {
			log.Warn().Str("file", filepath.Base(name)).Err(err).Msg("skipping unparseable payload")
			continue
		}
		meta, err := p.Meta()
		if err != nil {
			log.Warn().Str("file", filepath.Base(name)).Err(err).Msg("skipping payload without metadata")
			continue
		}
		if err := meta.Validate(); err != nil {
			log.Warn().Str("file", filepath.Base(name)).Err(err).Msg("skipping payload with invalid metadata")
			continue
		}
		if !validate.ConformsTo(reg, p, meta.Level) {
			log.Warn().
				Str("file", filepath.Base(name)).
				Str("sourceHash", meta.SourceHash).
				Int("level", int(meta.Level)).
				Msg("skipping payload that does not conform to its declared level")
			continue
		}
		if err := validate.CheckUnits(p); err != nil {
			log.Warn().Str("file", filepath.Base(name)).Err(err).Msg("payload has unit integrity problems")
		}
		levels, ok := s.items[meta.SourceHash]
		if !ok {
			levels = make(map[schema.Level]entry)
			s.items[meta.SourceHash] = levels
		}
		levels[meta.Level] = entry{data: data, meta: meta}
		log.Debug().
			Str("sourceHash", meta.SourceHash).
			Int("level", int(meta.Level)).
			Int("tokens", meta.TokenCount).
			Msg("published payload")
	}
	return s, nil
}

// Levels returns the ascending levels rendered for a content item, or nil
// when the hash is unknown.
func (s *Store) Levels(hash string) []schema.Level {
	byLevel, ok := s.items[hash]
	if !ok {
		return nil
	}
	out := make([]schema.Level, 0, len(byLevel))
	for l := range byLevel {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Get returns the stored payload bytes and metadata for (hash, level).
func (s *Store) Get(hash string, l schema.Level) ([]byte, payload.Metadata, bool) {
	e, ok := s.items[hash][l]
	if !ok {
		return nil, payload.Metadata{}, false
	}
	return e.data, e.meta, true
}

// Hashes returns the published source hashes in stable order.
func (s *Store) Hashes() []string {
	out := make([]string, 0, len(s.items))
	for h := range s.items {
		out = append(out, h)
	}
	sort.Strings(out)
	return out
}

// Len reports the number of published payloads across all content items.
func (s *Store) Len() int {
	n := 0
	for _, byLevel := range s.items {
		n += len(byLevel)
	}
	return n
}
