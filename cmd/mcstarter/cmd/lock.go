package cmd

import (
	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var lockJobs int

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Download every artifact and record its digest",
	Long: `Resolves the download URL of the core and every plugin, downloads them,
and writes the SHA-256 of each one to the lockfile. The whole lockfile is
replaced. Downloads are stored in the cache so a following build does not
fetch them again.

The configuration is read without environment substitution.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}

		previous, err := loadLockfile()
		if err != nil {
			return err
		}

		fetcher, err := newFetcher()
		if err != nil {
			return err
		}
		c, err := newCache()
		if err != nil {
			return err
		}

		eng := &engine.LockEngine{
			Fetcher: fetcher,
			Cache:   c,
			Metrics: runMetrics,
			Jobs:    lockJobs,
		}
		result, err := eng.Lock(cmd.Context(), cfg, previous)
		if err != nil {
			return err
		}

		if err := saveLockfile(result.Lockfile); err != nil {
			return err
		}

		for _, d := range result.Changed {
			info("  @G{locked}  %-20s %s → %s", d.Artifact, d.Before, d.After)
		}
		for _, name := range result.Unchanged {
			detail("unchanged  %s", name)
		}
		info("")
		info("Lock complete: %d changed, %d unchanged.", len(result.Changed), len(result.Unchanged))
		return nil
	},
}

func init() {
	lockCmd.Flags().IntVar(&lockJobs, "jobs", engine.DefaultJobs, "number of concurrent downloads")
	rootCmd.AddCommand(lockCmd)
}
