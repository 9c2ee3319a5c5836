// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package esa

import (
	"math/rand"
	"testing"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

func offset(n int) Index { return Index{Kind: IndexOffset, Offset: n} }
func missing() Index     { return Index{Kind: IndexMissing, Raw: "missing"} }
func bad(s string) Index { return Index{Kind: IndexBad, Raw: s} }

func TestDecodeIndex(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Index
	}{
		{"integer offset", float64(7), offset(7)},
		{"zero offset", float64(0), offset(0)},
		{"missing marker", "missing", missing()},
		{"stray string", "seven", bad("seven")},
		{"fractional number", 1.5, Index{Kind: IndexBad, Raw: "1.5"}},
		{"null", nil, Index{Kind: IndexBad, Raw: "<nil>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeIndex(tt.in); got != tt.want {
				t.Errorf("DecodeIndex(%v) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestIndexString(t *testing.T) {
	if got := offset(12).String(); got != "12" {
		t.Errorf("offset String() = %q, want %q", got, "12")
	}
	if got := missing().String(); got != "missing" {
		t.Errorf("missing String() = %q, want %q", got, "missing")
	}
	if got := bad("junk").String(); got != "junk" {
		t.Errorf("bad String() = %q, want %q", got, "junk")
	}
}

func TestCheckShape(t *testing.T) {
	tests := []struct {
		name    string
		span    Span
		wantErr bool
	}{
		{"offsets with major", Span{offset(0), offset(3), SeverityMajor}, false},
		{"offsets with undecided", Span{offset(1), offset(2), SeverityUndecided}, false},
		{"paired missing", Span{missing(), missing(), SeverityMinor}, false},
		{"half missing", Span{missing(), offset(3), SeverityMajor}, true},
		{"stray string start", Span{bad("x"), offset(3), SeverityMajor}, true},
		{"critical severity fails shape", Span{offset(0), offset(3), SeverityCritical}, true},
		{"unknown severity", Span{offset(0), offset(3), "catastrophic"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.span.CheckShape()
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckShape() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvalid(t *testing.T) {
	const hyp = "hello" // 5 characters

	tests := []struct {
		name string
		span Span
		want bool
	}{
		{"in-range major", Span{offset(0), offset(5), SeverityMajor}, false},
		{"in-range critical", Span{offset(1), offset(3), SeverityCritical}, false},
		{"paired missing", Span{missing(), missing(), SeverityMinor}, false},
		{"stray string", Span{bad("x"), offset(3), SeverityMajor}, true},
		{"negative start", Span{offset(-1), offset(3), SeverityMajor}, true},
		{"end past hypothesis", Span{offset(0), offset(6), SeverityMajor}, true},
		{"reversed offsets", Span{offset(4), offset(1), SeverityMajor}, true},
		{"undecided severity", Span{offset(0), offset(3), SeverityUndecided}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.Invalid(hyp); got != tt.want {
				t.Errorf("Invalid(%q) = %v, want %v", hyp, got, tt.want)
			}
		})
	}
}

func TestInvalidCountsRunesNotBytes(t *testing.T) {
	// "žluť" is 4 characters but 7 bytes.
	span := Span{offset(0), offset(4), SeverityMajor}
	if span.Invalid("žluť") {
		t.Error("span ending at rune count should be valid")
	}
	past := Span{offset(0), offset(5), SeverityMajor}
	if !past.Invalid("žluť") {
		t.Error("span past rune count should be invalid")
	}
}

func TestCorrect(t *testing.T) {
	const hyp = "hello"

	tests := []struct {
		name string
		in   Span
		want Span
	}{
		{
			"critical downgraded",
			Span{offset(0), offset(3), SeverityCritical},
			Span{offset(0), offset(3), SeverityMajor},
		},
		{
			"offsets clamped",
			Span{offset(-2), offset(9), SeverityMinor},
			Span{offset(0), offset(5), SeverityMinor},
		},
		{
			"reversed offsets swapped",
			Span{offset(4), offset(1), SeverityMajor},
			Span{offset(1), offset(4), SeverityMajor},
		},
		{
			"zero width collapses to missing",
			Span{offset(2), offset(2), SeverityMajor},
			Span{missing(), missing(), SeverityMajor},
		},
		{
			"clamp then collapse",
			Span{offset(7), offset(9), SeverityMinor},
			Span{missing(), missing(), SeverityMinor},
		},
		{
			"missing pair untouched",
			Span{missing(), missing(), SeverityMinor},
			Span{missing(), missing(), SeverityMinor},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Correct(hyp)
			if got != tt.want {
				t.Errorf("Correct() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCorrectDoesNotMutate(t *testing.T) {
	in := Span{offset(4), offset(1), SeverityCritical}
	_ = in.Correct("hello")
	if in.Start != offset(4) || in.Severity != SeverityCritical {
		t.Errorf("receiver mutated: %+v", in)
	}
}

func TestMissing(t *testing.T) {
	if !(Span{missing(), missing(), SeverityMinor}).Missing() {
		t.Error("missing pair should report Missing")
	}
	if !(Span{offset(3), offset(3), SeverityMinor}).Missing() {
		t.Error("zero-width offset pair should report Missing")
	}
	if (Span{offset(1), offset(3), SeverityMinor}).Missing() {
		t.Error("real extent should not report Missing")
	}
}

func TestRandomValid(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	const hyp = "hello world"

	for i := 0; i < 200; i++ {
		s := RandomValid(rng, hyp)
		if s.Invalid(hyp) {
			t.Fatalf("RandomValid produced invalid span %+v", s)
		}
		if s.Start.Offset >= s.End.Offset {
			t.Fatalf("RandomValid produced empty span %+v", s)
		}
		if s.Severity != SeverityMajor && s.Severity != SeverityMinor {
			t.Fatalf("RandomValid severity = %q", s.Severity)
		}
	}
}

func TestRandomValidDeterministic(t *testing.T) {
	a := RandomValid(rand.New(rand.NewSource(7)), "hello world")
	b := RandomValid(rand.New(rand.NewSource(7)), "hello world")
	if a != b {
		t.Errorf("same seed produced %+v and %+v", a, b)
	}
}

func TestDecode(t *testing.T) {
	raw := types.RawSpan{StartI: float64(2), EndI: "missing", Severity: "major"}
	got := Decode(raw)
	if got.Start != offset(2) || !got.End.Missing() || got.Severity != SeverityMajor {
		t.Errorf("Decode() = %+v", got)
	}
}
