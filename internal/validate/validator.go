// Package validate decides whether an arbitrary decoded value satisfies a
// pyramid level's field contract. Validation is a predicate: malformed
// input yields a negative answer, never an error or a panic.
package validate

import (
	"reflect"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

// ConformsTo reports whether value satisfies the cumulative contract of
// the given level: a well-typed metadata block plus every required field
// of levels 0..level with the declared shape. Conformance to level n
// implies conformance to every level below it.
func ConformsTo(reg *schema.Registry, value any, level schema.Level) bool {
	if reg == nil || !schema.Valid(level) {
		return false
	}
	m, ok := asMapping(value)
	if !ok {
		return false
	}
	if !metadataOK(m) {
		return false
	}
	for l := schema.LevelMin; l <= level; l++ {
		if !addsSatisfied(reg, m, l) {
			return false
		}
	}
	return true
}

// HighestLevel scans levels ascending and returns the highest level the
// value satisfies. ok is false when the base metadata check fails or not
// even level 0's fields are present. The result is advisory: it reflects
// field presence only, not deep semantic validity (see CheckUnits and
// CheckReferences for the deeper checks).
func HighestLevel(reg *schema.Registry, value any) (schema.Level, bool) {
	if reg == nil {
		return 0, false
	}
	m, ok := asMapping(value)
	if !ok {
		return 0, false
	}
	if !metadataOK(m) {
		return 0, false
	}
	highest := schema.LevelMin - 1
	for l := schema.LevelMin; l <= schema.LevelMax; l++ {
		if !addsSatisfied(reg, m, l) {
			break
		}
		highest = l
	}
	if highest < schema.LevelMin {
		return 0, false
	}
	return highest, true
}

func addsSatisfied(reg *schema.Registry, m map[string]any, l schema.Level) bool {
	for _, f := range reg.Adds(l) {
		v, present := m[f.Name]
		if !present || !kindMatches(v, f.Kind) {
			return false
		}
	}
	return true
}

// metadataOK requires the base metadata block with a well-typed version
// (string), level (number) and sourceHash (string). The remaining
// metadata fields are checked by payload.Metadata.Validate, which is a
// publisher-side concern rather than a conformance one.
func metadataOK(m map[string]any) bool {
	raw, ok := m[payload.MetadataKey]
	if !ok {
		return false
	}
	mb, ok := asMapping(raw)
	if !ok {
		return false
	}
	if !isString(mb[payload.FieldVersion]) {
		return false
	}
	if !isNumber(mb[payload.FieldLevel]) {
		return false
	}
	return isString(mb[payload.FieldSourceHash])
}

// asMapping accepts any string-keyed map representation. JSON decoding
// yields map[string]any directly; other decoders may produce differently
// typed maps, which are normalized here.
func asMapping(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case payload.Payload:
		return m, true
	}
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func kindMatches(v any, k schema.FieldKind) bool {
	if v == nil {
		return false
	}
	rv := reflect.ValueOf(v)
	switch k {
	case schema.KindMapping:
		return rv.Kind() == reflect.Map
	case schema.KindSequence:
		return rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array
	case schema.KindScalar:
		switch rv.Kind() {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct, reflect.Ptr:
			return false
		}
		return true
	}
	return false
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}
