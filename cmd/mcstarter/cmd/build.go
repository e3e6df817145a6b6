package cmd

import (
	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [target]",
	Short: "Stage the server into the target directory",
	Long: `Reads the lockfile as the source of truth, makes sure every artifact is
cached, copies the core and plugin jars into the target and removes stale
ones, then assembles the project files: YAML and JSON files are merged across
include directories, text files get ${NAME} substitution and everything else
is copied. Files already holding the right bytes are left alone. Does NOT
modify the lockfile.`,
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
		root, err := projectRoot()
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

		eng := &engine.BuildEngine{
			Cache:       c,
			ProjectRoot: root,
			TargetDir:   dir,
			Metrics:     runMetrics,
		}
		result, err := eng.Build(cmd.Context(), cfg, lf)
		if err != nil {
			return err
		}

		for _, f := range result.Staged {
			info("  @G{%s}  %s", f.Action, f.Path)
		}
		for _, f := range result.Removed {
			info("  @Y{%s}  %s", f.Action, f.Path)
		}
		for _, f := range result.Unchanged {
			detail("%s  %s", f.Action, f.Path)
		}

		info("")
		info("Build complete: %d staged, %d unchanged, %d removed.",
			len(result.Staged), len(result.Unchanged), len(result.Removed))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
