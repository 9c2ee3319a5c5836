// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tsvgen

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

// columns is the output header, in order. Downstream metric-training code
// addresses columns by these names.
var columns = []string{
	"doc_id",
	"segment_id",
	"source_lang",
	"target_lang",
	"set_id",
	"system_id",
	"source_segment",
	"hypothesis_segment",
	"reference_segment",
	"domain_name",
	"method",
	"start_indices",
	"end_indices",
	"error_types",
}

// WriteTSV renders rows as tab-separated values with a header.
func WriteTSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		record := []string{
			row.DocID,
			strconv.Itoa(row.SegmentID),
			row.SourceLang,
			row.TargetLang,
			row.SetID,
			row.SystemID,
			row.SourceSegment,
			row.HypothesisSegment,
			row.ReferenceSegment,
			row.DomainName,
			row.Method,
			row.StartIndices,
			row.EndIndices,
			row.ErrorTypes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteTSVFile writes rows to path, creating parent directories as
// needed.
func WriteTSVFile(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTSV(f, rows); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
