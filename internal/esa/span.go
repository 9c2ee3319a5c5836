// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package esa models WMT24 ESA error spans: character-offset annotations
// on MT hypotheses with a severity label. The dataset encodes offsets as
// either integers or the literal string "missing", and real files contain
// the occasional malformed value, so decoding and validation are explicit.
package esa

import (
	"fmt"
	"math/rand"
	"unicode/utf8"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

// Severity labels as they appear in the dataset. NoError is a sentinel
// used only in output rows for hypotheses without any span.
const (
	SeverityMajor     = "major"
	SeverityMinor     = "minor"
	SeverityCritical  = "critical"
	SeverityUndecided = "undecided"
	NoError           = "no-error"
)

// missingLiteral is the dataset's marker for spans without offsets.
const missingLiteral = "missing"

// IndexKind classifies a decoded span boundary.
type IndexKind int

const (
	// IndexOffset is an integer character offset into the hypothesis.
	IndexOffset IndexKind = iota
	// IndexMissing is the "missing" marker.
	IndexMissing
	// IndexBad is anything else: a stray string, a float, a null.
	IndexBad
)

// Index is one span boundary. Offset is meaningful only for IndexOffset;
// Raw preserves the original text of non-offset values for messages and
// for verbatim output.
type Index struct {
	Kind   IndexKind
	Offset int
	Raw    string
}

// DecodeIndex converts a raw jsonl value (json.Unmarshal into any yields
// float64 for numbers) into an Index.
func DecodeIndex(v any) Index {
	switch x := v.(type) {
	case float64:
		if x == float64(int(x)) {
			return Index{Kind: IndexOffset, Offset: int(x)}
		}
		return Index{Kind: IndexBad, Raw: fmt.Sprintf("%v", x)}
	case string:
		if x == missingLiteral {
			return Index{Kind: IndexMissing, Raw: x}
		}
		return Index{Kind: IndexBad, Raw: x}
	default:
		return Index{Kind: IndexBad, Raw: fmt.Sprintf("%v", v)}
	}
}

// Missing reports whether the index is the "missing" marker.
func (i Index) Missing() bool { return i.Kind == IndexMissing }

// String renders the index the way it appears in TSV columns: the offset
// digits, or the original text for non-offset values.
func (i Index) String() string {
	if i.Kind == IndexOffset {
		return fmt.Sprintf("%d", i.Offset)
	}
	return i.Raw
}

// Span is a decoded error span.
type Span struct {
	Start    Index
	End      Index
	Severity string
}

// Decode turns a raw jsonl span into a Span.
func Decode(raw types.RawSpan) Span {
	return Span{
		Start:    DecodeIndex(raw.StartI),
		End:      DecodeIndex(raw.EndI),
		Severity: raw.Severity,
	}
}

// CheckShape verifies the structural contract every dataset span must meet:
// each boundary is an offset or "missing", "missing" boundaries come in
// pairs, and the severity is major, minor, or undecided. A shape violation
// is corrupt input and aborts the run.
func (s Span) CheckShape() error {
	startOK := s.Start.Kind == IndexOffset || (s.Start.Missing() && s.End.Missing())
	if !startOK {
		return fmt.Errorf("span start %q is neither an offset nor a paired \"missing\"", s.Start)
	}
	endOK := s.End.Kind == IndexOffset || (s.End.Missing() && s.Start.Missing())
	if !endOK {
		return fmt.Errorf("span end %q is neither an offset nor a paired \"missing\"", s.End)
	}
	switch s.Severity {
	case SeverityMajor, SeverityMinor, SeverityUndecided:
		return nil
	}
	return fmt.Errorf("span severity %q not in {major, minor, undecided}", s.Severity)
}

// Invalid reports whether the span cannot be used as-is against the given
// hypothesis: a non-"missing" string boundary, an offset outside
// [0, len(hypothesis)], start after end, or a severity outside
// {major, minor, critical}. Offsets count characters, not bytes.
func (s Span) Invalid(hypothesis string) bool {
	n := utf8.RuneCountInString(hypothesis)
	for _, idx := range []Index{s.Start, s.End} {
		if idx.Kind == IndexBad {
			return true
		}
		if idx.Kind == IndexOffset && (idx.Offset < 0 || idx.Offset > n) {
			return true
		}
	}
	if s.Start.Kind == IndexOffset && s.End.Kind == IndexOffset && s.Start.Offset > s.End.Offset {
		return true
	}
	switch s.Severity {
	case SeverityMajor, SeverityMinor, SeverityCritical:
		return false
	}
	return true
}

// Missing reports whether the span carries no usable extent: both
// boundaries "missing", or a zero-width offset pair.
func (s Span) Missing() bool {
	if s.Start.Missing() && s.End.Missing() {
		return true
	}
	return s.Start.Kind == IndexOffset && s.End.Kind == IndexOffset &&
		s.Start.Offset == s.End.Offset
}

// Correct returns a normalized copy of the span: critical downgraded to
// major, offsets clamped to [0, len(hypothesis)], boundaries swapped when
// reversed, and zero-width spans collapsed to "missing". The receiver is
// not mutated.
func (s Span) Correct(hypothesis string) Span {
	out := s
	if out.Severity == SeverityCritical {
		out.Severity = SeverityMajor
	}

	n := utf8.RuneCountInString(hypothesis)
	if out.Start.Kind == IndexOffset && out.End.Kind == IndexOffset {
		out.Start.Offset = clamp(out.Start.Offset, 0, n)
		out.End.Offset = clamp(out.End.Offset, 0, n)
		if out.Start.Offset > out.End.Offset {
			out.Start, out.End = out.End, out.Start
		}
		if out.Start.Offset == out.End.Offset {
			missing := Index{Kind: IndexMissing, Raw: missingLiteral}
			out.Start, out.End = missing, missing
		}
	}
	return out
}

// RandomValid draws a uniformly random non-empty span over the hypothesis
// with severity major or minor. Used for augmentation; deterministic for a
// seeded rng.
func RandomValid(rng *rand.Rand, hypothesis string) Span {
	n := utf8.RuneCountInString(hypothesis)
	start := rng.Intn(n + 1)
	end := rng.Intn(n + 1)
	for start == end {
		end = rng.Intn(n + 1)
	}
	if end < start {
		start, end = end, start
	}
	severity := SeverityMajor
	if rng.Intn(2) == 1 {
		severity = SeverityMinor
	}
	return Span{
		Start:    Index{Kind: IndexOffset, Offset: start},
		End:      Index{Kind: IndexOffset, Offset: end},
		Severity: severity,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
