package cmd

import (
	"fmt"

	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [target]",
	Short: "Verify that the staged jars match the lockfile",
	Long: `Compares the core and plugin jars in the target against the ones a build
would stage from the lockfile. Reports missing and unexpected jars.
Exit 0 if everything matches; exit non-zero on drift. Suitable for CI pipelines.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(true)
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

		eng := &engine.CheckEngine{TargetDir: dir}
		result, err := eng.Check(cfg, lf)
		if err != nil {
			return err
		}

		if result.Clean {
			info("All artifacts match the lockfile.")
			return nil
		}

		for _, d := range result.Drifted {
			info("  @Y{drifted}     %s (expected %s, found %s)", d.Path, d.Expected, d.Actual)
		}
		for _, p := range result.Missing {
			info("  @R{missing}     %s", p)
		}
		for _, p := range result.Unexpected {
			info("  @Y{unexpected}  %s", p)
		}

		return fmt.Errorf("drift detected: %d missing, %d unexpected", len(result.Missing), len(result.Unexpected))
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
