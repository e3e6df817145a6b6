package cmd

import (
	"os"
	"strings"

	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/jhunt/go-log"
	"github.com/spf13/cobra"
)

var launchCmd = &cobra.Command{
	Use:   "launch [target]",
	Short: "Start the built server",
	Long: `Runs launch.command (default java) in the target directory with
launch.pre, the arguments in MCSTARTER_JVM_ARGS, -jar <core jar> and
launch.post. The server must have been built first.`,
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

		plan, err := engine.LaunchPlan(cfg, lf, dir, defaults.JVMArgs)
		if err != nil {
			return err
		}

		log.Infof("launching %s %s in %s", plan.Command, strings.Join(plan.Args, " "), plan.Dir)
		detail("%s %s", plan.Command, strings.Join(plan.Args, " "))

		run := plan.Cmd(cmd.Context())
		run.Stdin = os.Stdin
		run.Stdout = os.Stdout
		run.Stderr = os.Stderr
		return run.Run()
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
}
