// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"time"
)

// Annotation is one line of the WMT24 ESA jsonl dataset: a source segment,
// a system hypothesis, and the error spans a human annotator marked on it.
type Annotation struct {
	// Langs is the language pair in "src-tgt" form (e.g. "en-cs").
	Langs string `json:"langs"`

	// DocID identifies the source document.
	DocID string `json:"doc_id"`

	// LineID is the segment position within the document.
	LineID int `json:"line_id"`

	// System is the MT system that produced the hypothesis.
	System string `json:"system"`

	// Domain is the source text domain (e.g. "news", "social").
	Domain string `json:"domain"`

	// Src is the source segment. Never empty in well-formed input.
	Src string `json:"src"`

	// Tgt is the hypothesis segment. Records with an empty hypothesis
	// are dropped during conversion.
	Tgt string `json:"tgt"`

	// ESASpans are the annotated error spans on Tgt.
	ESASpans []RawSpan `json:"esa_spans"`
}

// RawSpan is an error span exactly as it appears in the jsonl file. Span
// indices are decoded lazily because the dataset mixes integers with the
// literal string "missing" (and, rarely, garbage).
type RawSpan struct {
	StartI   any    `json:"start_i"`
	EndI     any    `json:"end_i"`
	Severity string `json:"severity"`
}

// Signature returns the grouping key for an annotation: the same segment
// annotated by multiple raters shares one signature, and only one of the
// group reaches the output.
func (a Annotation) Signature() string {
	return a.DocID + "-" + strconv.Itoa(a.LineID) + "-" + a.System
}

// ReferenceRow is one row of the google/wmt24pp post-edited reference set.
type ReferenceRow struct {
	// LP is the wmt24pp language-pair code (e.g. "en-cs_CZ").
	LP string `json:"lp"`

	// Domain is the source text domain.
	Domain string `json:"domain"`

	// DocumentID identifies the source document.
	DocumentID string `json:"document_id"`

	// SegmentID is the segment position within the document.
	SegmentID int `json:"segment_id"`

	// IsBadSource marks segments the wmt24pp authors flagged as unusable;
	// these never serve as references.
	IsBadSource bool `json:"is_bad_source"`

	// Source is the English source segment.
	Source string `json:"source"`

	// Target is the post-edited human reference.
	Target string `json:"target"`
}

// LangReport holds per-language-pair conversion statistics for the run report.
type LangReport struct {
	// Rows is the number of TSV rows emitted for the pair.
	Rows int `yaml:"rows"`

	// ValidSignatures is the number of distinct segment signatures seen.
	ValidSignatures int `yaml:"valid_signatures"`

	// NoError counts rows whose hypothesis carried no error span.
	NoError int `yaml:"no_error"`

	// Missing counts spans annotated without character offsets.
	Missing int `yaml:"missing"`

	Major int `yaml:"major"`
	Minor int `yaml:"minor"`
}

// RunReport summarizes one conversion run. It is written as YAML next to
// the output TSV.
type RunReport struct {
	// RunID is a random UUID identifying the run.
	RunID string `yaml:"run_id"`

	// StartedAt and FinishedAt bound the run in UTC.
	StartedAt  time.Time `yaml:"started_at"`
	FinishedAt time.Time `yaml:"finished_at"`

	// InputJSONL and OutputTSV record the file paths used.
	InputJSONL string `yaml:"input_jsonl"`
	OutputTSV  string `yaml:"output_tsv"`

	// FilterInvalidSpans records whether invalid-span filtering was on.
	FilterInvalidSpans bool `yaml:"filter_invalid_spans"`

	// Seed is the RNG seed the run used.
	Seed int64 `yaml:"seed"`

	// Langs maps language pairs to their statistics.
	Langs map[string]LangReport `yaml:"langs"`

	// Skips maps skip reasons to counts (empty hypotheses, invalid spans,
	// signatures without references).
	Skips map[string]int `yaml:"skips,omitempty"`
}
