package schema

// Level identifies a detail tier in the SLIM pyramid. Levels are ordered;
// the field contract of a higher level is a strict superset of every lower
// level's contract.
type Level int

const (
	LevelMin Level = 0
	LevelMax Level = 9

	// LevelComplete carries the full source content. Its budget has no
	// upper cap because the size is content-dependent.
	LevelComplete Level = 7
)

// Version is the protocol version advertised in payload metadata.
const Version = "1.0"

// Valid reports whether l is a legitimate pyramid level.
func Valid(l Level) bool { return l >= LevelMin && l <= LevelMax }

// Levels returns all valid levels in ascending order.
func Levels() []Level {
	out := make([]Level, 0, int(LevelMax)+1)
	for l := LevelMin; l <= LevelMax; l++ {
		out = append(out, l)
	}
	return out
}

// FieldKind classifies the structural shape a payload field must have.
// Validation is structural: any value of the right shape satisfies the
// field, regardless of its concrete representation.
type FieldKind int

const (
	KindScalar FieldKind = iota
	KindSequence
	KindMapping
)

func (k FieldKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	}
	return "unknown"
}

// Field pairs a wire field name with its expected shape.
type Field struct {
	Name string
	Kind FieldKind
}

// Unbounded marks a budget with no upper cap.
const Unbounded = -1

// Budget bounds the expected token size of a payload at a level.
// Max == Unbounded means there is no upper cap (level 7).
type Budget struct {
	Min    int
	Target int
	Max    int
}

// Fields is the field contract at a level. Required accumulates
// monotonically from level 0; Optional is per level and may change
// between levels when a later required field supersedes it.
type Fields struct {
	Required []Field
	Optional []Field
}

type levelDef struct {
	name     string
	target   int
	variance int
	ttl      int // default cache lifetime in seconds
	adds     []Field
	optional []Field
}

// The stock level table. Targets are calibrated so each tier roughly
// doubles the detail of the one below, except the analysis tiers (8, 9)
// which sit between the outline and full-content sizes.
var stockDefs = [10]levelDef{
	{
		name: "headline", target: 50, variance: 25, ttl: 86400,
		adds:     []Field{{"title", KindScalar}},
		optional: []Field{{"author", KindScalar}, {"language", KindScalar}},
	},
	{
		name: "abstract", target: 100, variance: 50, ttl: 86400,
		adds:     []Field{{"abstract", KindScalar}},
		optional: []Field{{"author", KindScalar}, {"language", KindScalar}, {"keywords", KindSequence}},
	},
	{
		name: "outline", target: 200, variance: 75, ttl: 3600,
		adds:     []Field{{"units", KindSequence}},
		optional: []Field{{"keywords", KindSequence}, {"keyPoints", KindSequence}},
	},
	{
		name: "keypoints", target: 300, variance: 100, ttl: 3600,
		adds:     []Field{{"keyPoints", KindSequence}},
		optional: []Field{{"entities", KindSequence}},
	},
	{
		name: "summaries", target: 400, variance: 150, ttl: 3600,
		adds:     []Field{{"summaries", KindMapping}},
		optional: []Field{{"entities", KindSequence}, {"highlights", KindSequence}},
	},
	{
		name: "excerpts", target: 800, variance: 200, ttl: 3600,
		adds:     []Field{{"excerpts", KindMapping}},
		optional: []Field{{"entities", KindSequence}},
	},
	{
		name: "contents", target: 1500, variance: 400, ttl: 3600,
		adds: []Field{{"contents", KindMapping}},
	},
	{
		name: "complete", target: 1500, variance: 400, ttl: 3600,
		adds:     []Field{{"fullText", KindScalar}},
		optional: []Field{{"attachments", KindSequence}},
	},
	{
		name: "relations", target: 600, variance: 200, ttl: 21600,
		adds:     []Field{{"relations", KindSequence}},
		optional: []Field{{"crossRefs", KindSequence}},
	},
	{
		name: "semantic", target: 1000, variance: 300, ttl: 21600,
		adds:     []Field{{"semantics", KindMapping}},
		optional: []Field{{"glossary", KindMapping}},
	},
}

// BudgetOverride replaces a level's target/variance pair.
type BudgetOverride struct {
	Target   int
	Variance int
}

// Overrides lets a deployment tune budgets and cache lifetimes without
// touching the shared stock table. Entries for invalid levels are ignored.
type Overrides struct {
	Budgets map[Level]BudgetOverride
	TTLs    map[Level]int
}

// Registry is the authoritative per-level table of token budgets and
// field requirements. It is immutable after construction; consumers that
// need different budgets build their own Registry via New rather than
// mutating the shared one.
type Registry struct {
	defs [10]levelDef
}

var defaultRegistry = &Registry{defs: stockDefs}

// Default returns the process-wide stock registry.
func Default() *Registry { return defaultRegistry }

// New builds a registry with the stock table plus the given overrides.
func New(o Overrides) *Registry {
	r := &Registry{defs: stockDefs}
	for l, b := range o.Budgets {
		if !Valid(l) {
			continue
		}
		r.defs[l].target = b.Target
		r.defs[l].variance = b.Variance
	}
	for l, ttl := range o.TTLs {
		if !Valid(l) {
			continue
		}
		r.defs[l].ttl = ttl
	}
	return r
}

// Known reports whether the registry has a definition for l.
func (r *Registry) Known(l Level) bool { return Valid(l) }

// Name returns the human-readable tier name, or "" for unknown levels.
func (r *Registry) Name(l Level) string {
	if !Valid(l) {
		return ""
	}
	return r.defs[l].name
}

// BudgetFor returns the token budget for a level. Unknown levels yield
// the zero Budget; callers must treat that as "no such level", not as a
// zero-content level.
func (r *Registry) BudgetFor(l Level) Budget {
	if !Valid(l) {
		return Budget{}
	}
	d := r.defs[l]
	min := d.target - d.variance
	if min < 0 {
		min = 0
	}
	max := d.target + d.variance
	if l == LevelComplete {
		max = Unbounded
	}
	return Budget{Min: min, Target: d.target, Max: max}
}

// FieldsFor returns the field contract at a level. Required fields are
// the cumulative additions of levels 0..l; unknown levels yield empty
// sets.
func (r *Registry) FieldsFor(l Level) Fields {
	if !Valid(l) {
		return Fields{}
	}
	var req []Field
	for i := LevelMin; i <= l; i++ {
		req = append(req, r.defs[i].adds...)
	}
	return Fields{
		Required: req,
		Optional: append([]Field(nil), r.defs[l].optional...),
	}
}

// Adds returns only the required fields introduced at exactly level l.
func (r *Registry) Adds(l Level) []Field {
	if !Valid(l) {
		return nil
	}
	return append([]Field(nil), r.defs[l].adds...)
}

// TTLFor returns the default cache lifetime in seconds for a level, or 0
// for unknown levels.
func (r *Registry) TTLFor(l Level) int {
	if !Valid(l) {
		return 0
	}
	return r.defs[l].ttl
}
