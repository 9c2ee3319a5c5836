package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/esa-pipeline/internal/bootstrap"
	"github.com/pdiddy/esa-pipeline/pkg/types"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Prepare the environment and run the external converter",
	Long: `Bootstrap validates that HF_HOME names an existing directory, makes
sure pipx and uv are installed (installing them user-scoped when absent),
and dispatches to the external Python converter with its fixed arguments.
The sequence is fail-fast: the first failing step aborts the run and its
exit status becomes the process exit status.`,
	RunE: runBootstrap,
}

func init() {
	bootstrapCmd.Flags().String("script", bootstrap.DefaultScript, "converter script handed to uv")
	bootstrapCmd.Flags().Bool("dry-run", false, "print the converter invocation without running anything")

	rootCmd.AddCommand(bootstrapCmd)
}

func runBootstrap(cmd *cobra.Command, args []string) error {
	script, _ := cmd.Flags().GetString("script")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if dryRun {
		fmt.Println(bootstrap.CommandLine(script))
		return nil
	}

	cfg := types.BootstrapConfig{
		CacheHomeVar: bootstrap.DefaultCacheHomeVar,
		ScriptPath:   script,
	}
	return bootstrap.New(cfg, os.Stdout).Run()
}
