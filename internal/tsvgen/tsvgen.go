// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tsvgen turns WMT24 ESA annotations into the tab-separated
// training format: one row per segment signature, with the error spans
// flattened into space-joined index and severity columns and the wmt24pp
// post-edited target attached as the reference segment.
package tsvgen

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pdiddy/esa-pipeline/internal/esa"
	"github.com/pdiddy/esa-pipeline/pkg/types"
)

// Fixed column values: every row comes from the official ESA campaign.
const (
	setID  = "official"
	method = "ESA"
)

// Skip-reason keys for the run report.
const (
	skipEmptyHypothesis = "empty_hypothesis"
	skipInvalidSpan     = "datum_with_invalid_span"
	skipNoOutput        = "signatures_without_output"
)

// ReferenceLoader supplies the source-to-target reference map for a
// language pair.
type ReferenceLoader interface {
	References(ctx context.Context, langs string, w io.Writer) (map[string]string, error)
}

// SupportedPairs reports which language pairs convert at all. Pairs
// without wmt24pp references are silently dropped, matching the campaign
// data release.
type SupportedPairs func(langs string) bool

// Row is one line of the output TSV.
type Row struct {
	DocID             string
	SegmentID         int
	SourceLang        string
	TargetLang        string
	SetID             string
	SystemID          string
	SourceSegment     string
	HypothesisSegment string
	ReferenceSegment  string
	DomainName        string
	Method            string
	StartIndices      string
	EndIndices        string
	ErrorTypes        string
}

// Result holds the rows and statistics of one conversion. Rows preserve
// the input's first-appearance order of language pairs and signatures.
type Result struct {
	Rows  []Row
	Langs map[string]types.LangReport
	Skips map[string]int
}

// group is the annotations for one language pair, keyed and ordered by
// segment signature.
type group struct {
	langs string
	sigs  []string
	bySig map[string][]types.Annotation
}

// Convert runs the full pipeline: group annotations, attach references,
// validate and flatten spans, and collect statistics. Progress and
// per-pair summaries go to w. A span shape violation aborts the run.
func Convert(ctx context.Context, anns []types.Annotation, loader ReferenceLoader, supported SupportedPairs, filterInvalid bool, w io.Writer) (*Result, error) {
	if filterInvalid {
		fmt.Fprintln(w, "filtering records with invalid spans")
	}

	res := &Result{
		Langs: make(map[string]types.LangReport),
		Skips: make(map[string]int),
	}

	groups := groupAnnotations(anns, res)

	for _, g := range groups {
		if !supported(g.langs) {
			continue
		}

		refs, err := loader.References(ctx, g.langs, w)
		if err != nil {
			return nil, fmt.Errorf("loading %s references: %w", g.langs, err)
		}

		report := types.LangReport{ValidSignatures: len(g.sigs)}
		for _, sig := range g.sigs {
			emitted, err := convertSignature(g.bySig[sig], refs, filterInvalid, res, &report)
			if err != nil {
				return nil, err
			}
			if emitted {
				report.Rows++
			}
		}

		res.Skips[skipNoOutput] += report.ValidSignatures - report.Rows
		res.Langs[g.langs] = report

		fmt.Fprintf(w, "# %s data: %d from %d valid signatures:\n", g.langs, report.Rows, report.ValidSignatures)
		fmt.Fprintf(w, "- no-error: %d\n", report.NoError)
		fmt.Fprintf(w, "- missing: %d\n", report.Missing)
		fmt.Fprintf(w, "- major: %d\n", report.Major)
		fmt.Fprintf(w, "- minor: %d\n", report.Minor)
	}

	reasons := make([]string, 0, len(res.Skips))
	for reason := range res.Skips {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "# %s: %d\n", reason, res.Skips[reason])
	}
	return res, nil
}

// groupAnnotations drops empty hypotheses and buckets the rest by language
// pair and segment signature, preserving first-appearance order of both.
func groupAnnotations(anns []types.Annotation, res *Result) []*group {
	var groups []*group
	byLangs := make(map[string]*group)

	for _, ann := range anns {
		if ann.Tgt == "" {
			res.Skips[skipEmptyHypothesis]++
			continue
		}
		g, ok := byLangs[ann.Langs]
		if !ok {
			g = &group{langs: ann.Langs, bySig: make(map[string][]types.Annotation)}
			byLangs[ann.Langs] = g
			groups = append(groups, g)
		}
		sig := ann.Signature()
		if _, seen := g.bySig[sig]; !seen {
			g.sigs = append(g.sigs, sig)
		}
		g.bySig[sig] = append(g.bySig[sig], ann)
	}
	return groups
}

// convertSignature emits at most one row for a signature group: the first
// annotation that has a reference and survives span validation wins.
func convertSignature(anns []types.Annotation, refs map[string]string, filterInvalid bool, res *Result, report *types.LangReport) (bool, error) {
	for _, ann := range anns {
		ref, ok := refs[ann.Src]
		if !ok {
			continue
		}

		row, counts, err := flattenSpans(ann, filterInvalid)
		if err != nil {
			return false, err
		}
		if row == nil {
			res.Skips[skipInvalidSpan]++
			continue
		}

		row.ReferenceSegment = ref
		res.Rows = append(res.Rows, *row)

		if row.ErrorTypes == esa.NoError {
			report.NoError++
		}
		report.Major += counts[esa.SeverityMajor]
		report.Minor += counts[esa.SeverityMinor]
		report.Missing += counts["missing"]
		return true, nil
	}
	return false, nil
}

// flattenSpans validates an annotation's spans and renders the index and
// severity columns. It returns a nil row when filtering is on and a span
// is invalid; a malformed span is an error.
func flattenSpans(ann types.Annotation, filterInvalid bool) (*Row, map[string]int, error) {
	var starts, ends, severities []string
	counts := make(map[string]int)

	for _, raw := range ann.ESASpans {
		span := esa.Decode(raw)
		if err := span.CheckShape(); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", ann.Signature(), err)
		}

		if filterInvalid && span.Invalid(ann.Tgt) {
			return nil, nil, nil
		}

		if span.Missing() {
			counts["missing"]++
		} else {
			counts[span.Severity]++
		}

		starts = append(starts, span.Start.String())
		ends = append(ends, span.End.String())
		severities = append(severities, span.Severity)
	}

	if len(starts) == 0 {
		starts = append(starts, "-1")
		ends = append(ends, "-1")
		severities = append(severities, esa.NoError)
	}

	sourceLang, targetLang, _ := strings.Cut(ann.Langs, "-")

	return &Row{
		DocID:             ann.DocID,
		SegmentID:         ann.LineID,
		SourceLang:        sourceLang,
		TargetLang:        targetLang,
		SetID:             setID,
		SystemID:          ann.System,
		SourceSegment:     ann.Src,
		HypothesisSegment: ann.Tgt,
		DomainName:        ann.Domain,
		Method:            method,
		StartIndices:      strings.Join(starts, " "),
		EndIndices:        strings.Join(ends, " "),
		ErrorTypes:        strings.Join(severities, " "),
	}, counts, nil
}
