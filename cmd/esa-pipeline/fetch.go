package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/esa-pipeline/internal/hub"
	"github.com/pdiddy/esa-pipeline/internal/refindex"
	"github.com/pdiddy/esa-pipeline/internal/secrets"
	"github.com/pdiddy/esa-pipeline/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [language-pairs...]",
	Short: "Download and index wmt24pp references",
	Long: `Fetch downloads wmt24pp post-edited references from the Hugging Face
hub into the cache and indexes them for conversion. Without arguments all
six supported language pairs are fetched. Cached and indexed pairs are
skipped unless --force is given.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("cache-dir", "", "cache root for references (default: $HF_HOME)")
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 60s)")
	fetchCmd.Flags().Bool("force", false, "re-download and re-index even when already present")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	pairs := args
	if len(pairs) == 0 {
		pairs = hub.Pairs()
	}

	cacheDir, err := resolveCacheDir(cmd)
	if err != nil {
		return err
	}
	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = defaultTimeout
	}
	force, _ := cmd.Flags().GetBool("force")

	client := hub.NewClient(types.HubConfig{
		HTTPConfig: types.HTTPConfig{Timeout: timeout, UserAgent: defaultUserAgent},
		Token:      secrets.HFToken(loadedSecrets),
		CacheDir:   cacheDir,
	})

	store, err := refindex.Open(hub.IndexDir(cacheDir))
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	for _, lp := range pairs {
		if !force {
			n, err := store.Count(ctx, lp)
			if err != nil {
				return err
			}
			if n > 0 {
				fmt.Printf("indexed: %s (%d rows)\n", lp, n)
				continue
			}
		} else {
			if path, err := hub.CachePath(cacheDir, lp); err == nil {
				os.Remove(path)
			}
		}

		rows, err := client.FetchRows(ctx, lp, os.Stdout)
		if err != nil {
			return err
		}
		if err := store.Insert(ctx, lp, rows); err != nil {
			return err
		}
		fmt.Printf("indexed: %s (%d rows)\n", lp, len(rows))
	}
	return nil
}
