// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tsvgen

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

func sampleRow() Row {
	return Row{
		DocID:             "doc1",
		SegmentID:         3,
		SourceLang:        "en",
		TargetLang:        "cs",
		SetID:             "official",
		SystemID:          "sysA",
		SourceSegment:     "Hello.",
		HypothesisSegment: "Ahoj svete.",
		ReferenceSegment:  "Ahoj.",
		DomainName:        "news",
		Method:            "ESA",
		StartIndices:      "0 missing",
		EndIndices:        "4 missing",
		ErrorTypes:        "major minor",
	}
}

func TestWriteTSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTSV(&buf, []Row{sampleRow()}); err != nil {
		t.Fatalf("WriteTSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header + 1 row", len(lines))
	}

	header := strings.Split(lines[0], "\t")
	if len(header) != 14 || header[0] != "doc_id" || header[13] != "error_types" {
		t.Errorf("header = %v", header)
	}

	fields := strings.Split(lines[1], "\t")
	if fields[1] != "3" || fields[8] != "Ahoj." || fields[11] != "0 missing" {
		t.Errorf("fields = %v", fields)
	}
}

func TestWriteTSVQuotesEmbeddedTabs(t *testing.T) {
	row := sampleRow()
	row.SourceSegment = "has\ttab"

	var buf bytes.Buffer
	if err := WriteTSV(&buf, []Row{row}); err != nil {
		t.Fatal(err)
	}

	// Round-trip through a TSV reader to confirm the field survives.
	r := csv.NewReader(&buf)
	r.Comma = '\t'
	records, err := r.ReadAll()
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if records[1][6] != "has\ttab" {
		t.Errorf("source segment = %q", records[1][6])
	}
}

func TestWriteTSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "wmt24_esa.tsv")
	if err := WriteTSVFile(path, []Row{sampleRow()}); err != nil {
		t.Fatalf("WriteTSVFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "doc_id\t") {
		t.Errorf("file starts with %q", string(data[:20]))
	}
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.ConvertConfig
		want string
	}{
		{
			"next to output",
			types.ConvertConfig{OutputTSV: "out/wmt24_esa.tsv"},
			filepath.Join("out", "wmt24_esa-report.yaml"),
		},
		{
			"explicit report dir",
			types.ConvertConfig{OutputTSV: "wmt24_esa.tsv", ReportDir: "reports"},
			filepath.Join("reports", "wmt24_esa-report.yaml"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ReportPath(tt.cfg); got != tt.want {
				t.Errorf("ReportPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportRoundTrip(t *testing.T) {
	cfg := types.ConvertConfig{
		InputJSONL:         "wmt24_esa.jsonl",
		OutputTSV:          "wmt24_esa.tsv",
		FilterInvalidSpans: true,
		Seed:               42,
	}
	res := &Result{
		Langs: map[string]types.LangReport{
			"en-cs": {Rows: 10, ValidSignatures: 12, Major: 4, Minor: 3, Missing: 2, NoError: 1},
		},
		Skips: map[string]int{skipInvalidSpan: 2},
	}

	report := NewReport(cfg, res, time.Now().Add(-time.Second))
	if report.RunID == "" {
		t.Error("report has no run id")
	}
	if report.FinishedAt.Before(report.StartedAt) {
		t.Error("report finished before it started")
	}

	path := filepath.Join(t.TempDir(), "report.yaml")
	if err := WriteReport(path, report); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var got types.RunReport
	if err := yaml.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshaling report: %v", err)
	}
	if got.RunID != report.RunID || !got.FilterInvalidSpans || got.Seed != 42 {
		t.Errorf("round-tripped report = %+v", got)
	}
	if got.Langs["en-cs"].Rows != 10 {
		t.Errorf("langs = %+v", got.Langs)
	}
}
