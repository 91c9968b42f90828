// Package negotiate implements the content-type and header conventions
// surrounding servers use to exchange pyramid levels. The core protocol
// does not depend on these; they exist so independent servers format the
// same bytes.
package negotiate

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

// MediaType is the negotiated media type token, parameterized by level.
const MediaType = "application/slim-pyramid+json"

// Response header conventions.
const (
	HeaderAvailableLevels = "X-Slim-Available-Levels"
	HeaderTokenCount      = "X-Slim-Token-Count"
)

var levelParam = regexp.MustCompile(`level=(\d+)`)

// ParseLevel extracts the level parameter from an Accept or Content-Type
// header value. ok is false when the header carries no level parameter or
// the number falls outside the valid 0-9 range.
func ParseLevel(header string) (schema.Level, bool) {
	m := levelParam.FindStringSubmatch(header)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || !schema.Valid(schema.Level(n)) {
		return 0, false
	}
	return schema.Level(n), true
}

// ContentType formats the response media type for a level.
func ContentType(level schema.Level) string {
	return fmt.Sprintf("%s; level=%d; charset=utf-8", MediaType, level)
}

// FormatLevels renders an available-levels list as a comma-separated
// ascending integer list.
func FormatLevels(levels []schema.Level) string {
	sorted := append([]schema.Level(nil), levels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for _, l := range sorted {
		parts = append(parts, strconv.Itoa(int(l)))
	}
	return strings.Join(parts, ",")
}

// ParseLevels parses a comma-separated level list, ignoring blanks.
// It is the inverse of FormatLevels and also backs the CLI's
// --available flag.
func ParseLevels(s string) ([]schema.Level, error) {
	var out []schema.Level
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid level %q: %w", part, err)
		}
		if !schema.Valid(schema.Level(n)) {
			return nil, fmt.Errorf("level %d out of range 0-9", n)
		}
		out = append(out, schema.Level(n))
	}
	return out, nil
}

// CacheControl renders the Cache-Control header for a payload. The
// payload's optional ttlSeconds overrides the registry's level default.
func CacheControl(meta payload.Metadata, reg *schema.Registry) string {
	ttl := meta.TTLSeconds
	if ttl <= 0 {
		ttl = reg.TTLFor(meta.Level)
	}
	return fmt.Sprintf("public, max-age=%d", ttl)
}
