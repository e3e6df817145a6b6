package cmd

import (
	"fmt"

	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [target]",
	Short: "Show the state of every artifact",
	Long: `Shows artifact name, version, where it is downloaded from, the locked
digest, and whether it is in the cache and staged in the target.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		lf, err := loadLockfile()
		if err != nil {
			return err
		}
		dir, err := targetDir(args)
		if err != nil {
			return err
		}
		c, err := newCache()
		if err != nil {
			return err
		}

		eng := &engine.StatusEngine{Cache: c, TargetDir: dir}
		result, err := eng.Status(cfg, lf)
		if err != nil {
			return err
		}

		// Print table header.
		fmt.Printf("%-20s %-12s %-16s %-14s %-7s %s\n", "ARTIFACT", "VERSION", "FROM", "DIGEST", "CACHED", "STAGED")
		for _, s := range result.Artifacts {
			digest := "(not locked)"
			if s.Digest != "" {
				digest = s.Digest[:12]
			}
			fmt.Printf("%-20s %-12s %-16s %-14s %-7s %s\n",
				s.Name, orDash(s.Version), s.Locator, digest, yesNo(s.Cached), yesNo(s.Staged))
			detail("%s", s.URL)
		}
		return nil
	},
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
