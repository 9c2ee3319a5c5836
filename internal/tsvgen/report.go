// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tsvgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/esa-pipeline/pkg/types"
)

// NewReport assembles the run report for a finished conversion.
func NewReport(cfg types.ConvertConfig, res *Result, started time.Time) types.RunReport {
	return types.RunReport{
		RunID:              uuid.NewString(),
		StartedAt:          started.UTC(),
		FinishedAt:         time.Now().UTC(),
		InputJSONL:         cfg.InputJSONL,
		OutputTSV:          cfg.OutputTSV,
		FilterInvalidSpans: cfg.FilterInvalidSpans,
		Seed:               cfg.Seed,
		Langs:              res.Langs,
		Skips:              res.Skips,
	}
}

// ReportPath derives where the YAML report goes: into cfg.ReportDir when
// set, otherwise next to the output TSV, named after it.
func ReportPath(cfg types.ConvertConfig) string {
	base := strings.TrimSuffix(filepath.Base(cfg.OutputTSV), filepath.Ext(cfg.OutputTSV))
	dir := cfg.ReportDir
	if dir == "" {
		dir = filepath.Dir(cfg.OutputTSV)
	}
	return filepath.Join(dir, base+"-report.yaml")
}

// WriteReport marshals the report to YAML at path.
func WriteReport(path string, report types.RunReport) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
