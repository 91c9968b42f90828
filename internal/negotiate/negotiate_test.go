package negotiate_test

import (
	"testing"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/negotiate"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		header string
		want   schema.Level
		ok     bool
	}{
		{"application/slim-pyramid+json; level=3; charset=utf-8", 3, true},
		{"application/slim-pyramid+json; level=0", 0, true},
		{"application/slim-pyramid+json;level=9", 9, true},
		{"application/slim-pyramid+json", 0, false},
		{"", 0, false},
		{"application/json", 0, false},
		{"application/slim-pyramid+json; level=12", 0, false},
		{"application/slim-pyramid+json; level=abc", 0, false},
	}
	for _, c := range cases {
		got, ok := negotiate.ParseLevel(c.header)
		if ok != c.ok || got != c.want {
			t.Errorf("ParseLevel(%q) = (%d, %v), want (%d, %v)", c.header, got, ok, c.want, c.ok)
		}
	}
}

func TestContentTypeRoundTrip(t *testing.T) {
	for _, l := range schema.Levels() {
		ct := negotiate.ContentType(l)
		got, ok := negotiate.ParseLevel(ct)
		if !ok || got != l {
			t.Errorf("round trip for L%d via %q: got (%d, %v)", l, ct, got, ok)
		}
	}
}

func TestFormatLevelsSortsAscending(t *testing.T) {
	got := negotiate.FormatLevels([]schema.Level{7, 1, 4})
	if got != "1,4,7" {
		t.Fatalf("FormatLevels = %q, want 1,4,7", got)
	}
}

func TestParseLevels(t *testing.T) {
	got, err := negotiate.ParseLevels("1, 3,5")
	if err != nil {
		t.Fatalf("ParseLevels: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 5 {
		t.Fatalf("ParseLevels = %v", got)
	}
	if _, err := negotiate.ParseLevels("1,99"); err == nil {
		t.Fatal("out-of-range level accepted")
	}
	if _, err := negotiate.ParseLevels("1,x"); err == nil {
		t.Fatal("non-numeric level accepted")
	}
}

func TestCacheControlUsesLevelDefault(t *testing.T) {
	reg := schema.Default()
	meta := payload.Metadata{Level: 0}
	want := "public, max-age=86400"
	if got := negotiate.CacheControl(meta, reg); got != want {
		t.Fatalf("CacheControl = %q, want %q", got, want)
	}
}

func TestCacheControlHonorsTTLOverride(t *testing.T) {
	reg := schema.Default()
	meta := payload.Metadata{Level: 0, TTLSeconds: 30}
	if got := negotiate.CacheControl(meta, reg); got != "public, max-age=30" {
		t.Fatalf("CacheControl = %q", got)
	}
}
