// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the esa-pipeline CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/esa-pipeline/internal/bootstrap"
	"github.com/pdiddy/esa-pipeline/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the esa-pipeline CLI.
var rootCmd = &cobra.Command{
	Use:   "esa-pipeline",
	Short: "Prepare WMT24 ESA human judgments for MT metric training",
	Long: `esa-pipeline turns WMT24 ESA (Error Span Annotation) human judgments
into tab-separated training data for MT evaluation metrics. It validates the
cache environment, fetches wmt24pp post-edited references from the Hugging
Face hub, and flattens annotated error spans into per-segment TSV rows.

Each stage is a subcommand: bootstrap, fetch, and convert.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./esa-pipeline.yaml or ~/.config/esa-pipeline/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("esa-pipeline")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "esa-pipeline"))
		}
	}

	viper.SetEnvPrefix("ESA_PIPELINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// A failing child process exits with its own status; everything
		// else is 1.
		os.Exit(bootstrap.ExitCode(err))
	}
}
