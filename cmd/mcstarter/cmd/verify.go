package cmd

import (
	"fmt"

	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [artifact...]",
	Short: "Check whether upstream artifacts changed since the last lock",
	Long: `Downloads the core and plugins again and compares their digests with the
lockfile. Read-only: neither the lockfile nor the cache is modified.
Exit non-zero when anything changed or could not be downloaded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		lf, err := loadLockfile()
		if err != nil {
			return err
		}
		fetcher, err := newFetcher()
		if err != nil {
			return err
		}

		eng := &engine.VerifyEngine{Fetcher: fetcher}
		result, err := eng.Verify(cmd.Context(), cfg, lf, args)
		if err != nil {
			return err
		}

		for _, name := range result.UpToDate {
			detail("up to date  %s", name)
		}
		for _, d := range result.Changed {
			info("  @Y{changed}  %-20s %s → %s", d.Artifact, d.Before, d.After)
		}
		for _, e := range result.Errors {
			errorf("%s", e)
		}

		if len(result.Changed) > 0 || len(result.Errors) > 0 {
			return fmt.Errorf("%d artifact(s) changed, %d failed", len(result.Changed), len(result.Errors))
		}
		info("All %d artifacts match the lockfile.", len(result.UpToDate))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
