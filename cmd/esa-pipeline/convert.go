package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/esa-pipeline/internal/bootstrap"
	"github.com/pdiddy/esa-pipeline/internal/hub"
	"github.com/pdiddy/esa-pipeline/internal/refindex"
	"github.com/pdiddy/esa-pipeline/internal/secrets"
	"github.com/pdiddy/esa-pipeline/internal/tsvgen"
	"github.com/pdiddy/esa-pipeline/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "esa-pipeline/0.1"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert WMT24 ESA jsonl annotations to a training TSV",
	Long: `Convert reads ESA annotations from jsonl, attaches wmt24pp post-edited
references (downloading and indexing them on first use), flattens the error
spans into index and severity columns, and writes one TSV row per segment
signature. A YAML run report with per-pair statistics lands next to the
output file.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("wmt24-esa-jsonl", "i", "wmt24_esa.jsonl", "input annotations file")
	convertCmd.Flags().StringP("output-tsv", "o", "wmt24_esa.tsv", "output TSV file")
	convertCmd.Flags().Bool("filter-data-with-invalid-span", false, "drop records containing an invalid span")
	convertCmd.Flags().Int64("seed", 42, "RNG seed recorded in the run report")
	convertCmd.Flags().String("cache-dir", "", "cache root for references (default: $HF_HOME)")
	convertCmd.Flags().Bool("offline", false, "use only cached references, never the network")
	convertCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("wmt24-esa-jsonl")
	output, _ := cmd.Flags().GetString("output-tsv")
	filter, _ := cmd.Flags().GetBool("filter-data-with-invalid-span")
	seed, _ := cmd.Flags().GetInt64("seed")
	offline, _ := cmd.Flags().GetBool("offline")

	cacheDir, err := resolveCacheDir(cmd)
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}

	cfg := types.ConvertConfig{
		InputJSONL:         input,
		OutputTSV:          output,
		FilterInvalidSpans: filter,
		Seed:               seed,
	}

	f, err := os.Open(cfg.InputJSONL)
	if err != nil {
		return fmt.Errorf("opening %s: %w", cfg.InputJSONL, err)
	}
	anns, err := tsvgen.ReadAnnotations(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.InputJSONL, err)
	}

	client := hub.NewClient(types.HubConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		Token:      secrets.HFToken(loadedSecrets),
		CacheDir:   cacheDir,
		Offline:    offline,
	})

	store, err := refindex.Open(hub.IndexDir(cacheDir))
	if err != nil {
		return err
	}
	defer store.Close()

	loader := &refindex.Loader{Store: store, Source: client}
	supported := func(langs string) bool {
		_, ok := hub.Code(langs)
		return ok
	}

	started := time.Now()
	res, err := tsvgen.Convert(cmd.Context(), anns, loader, supported, filter, os.Stdout)
	if err != nil {
		return err
	}

	if err := tsvgen.WriteTSVFile(cfg.OutputTSV, res.Rows); err != nil {
		return err
	}

	report := tsvgen.NewReport(cfg, res, started)
	reportPath := tsvgen.ReportPath(cfg)
	if err := tsvgen.WriteReport(reportPath, report); err != nil {
		return err
	}

	fmt.Printf("wrote %d rows to %s (report: %s)\n", len(res.Rows), cfg.OutputTSV, reportPath)
	return nil
}

// resolveCacheDir takes the --cache-dir flag when given, otherwise the
// validated cache-home environment variable.
func resolveCacheDir(cmd *cobra.Command) (string, error) {
	if dir, _ := cmd.Flags().GetString("cache-dir"); dir != "" {
		return dir, nil
	}
	return bootstrap.CacheHome(bootstrap.DefaultCacheHomeVar)
}
