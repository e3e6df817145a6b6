package cmd

import (
	"fmt"
	"os"

	"github.com/bianoble/mcstarter/internal/config"
	"github.com/bianoble/mcstarter/internal/lock"
	"github.com/bianoble/mcstarter/internal/metrics"
	"github.com/jhunt/go-ansi"
	env "github.com/jhunt/go-envirotron"
	"github.com/jhunt/go-log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// settings holds the flag defaults; each can be overridden from the
// environment before the flags are parsed.
type settings struct {
	Config      string `env:"MCSTARTER_CONFIG"`
	Lockfile    string `env:"MCSTARTER_LOCKFILE"`
	CacheDir    string `env:"MCSTARTER_CACHE_DIR"`
	Target      string `env:"MCSTARTER_TARGET"`
	LogLevel    string `env:"MCSTARTER_LOG_LEVEL"`
	MetricsFile string `env:"MCSTARTER_METRICS_FILE"`
	JVMArgs     string `env:"MCSTARTER_JVM_ARGS"`
}

func defaultSettings() settings {
	s := settings{
		Config:   config.FileName,
		Lockfile: lock.FileName,
		LogLevel: "warning",
	}
	env.Override(&s)
	return s
}

var defaults = defaultSettings()

// Global flags.
var (
	configPath   string
	lockfilePath string
	cacheDir     string
	metricsFile  string
	verbose      bool
	quiet        bool
	noColor      bool
)

// runMetrics collects counters for the current invocation.
var runMetrics = metrics.New()

var rootCmd = &cobra.Command{
	Use:   "mcstarter",
	Short: "Deterministic server builds from a config and a lockfile",
	Long: `mcstarter assembles a runnable server directory from a layered
configuration. It pins the core and every plugin by content digest in a
lockfile, caches downloads by digest, merges configuration files across
include directories and substitutes environment placeholders.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := defaults.LogLevel
		if verbose {
			level = "debug"
		}
		log.SetupLogging(log.LogConfig{Type: "console", Level: level})

		ansi.ForceColor(!noColor && isatty.IsTerminal(os.Stdout.Fd()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if metricsFile == "" {
			return nil
		}
		if err := runMetrics.WriteFile(metricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mcstarter %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaults.Config, "path to config file")
	rootCmd.PersistentFlags().StringVar(&lockfilePath, "lockfile", defaults.Lockfile, "path to lockfile")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache", defaults.CacheDir, "artifact cache directory (default <project>/.mcstarter/cache)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", defaults.MetricsFile, "write run metrics to this file in Prometheus textfile format")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "detailed output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "minimal output (errors only)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		errorf("%s", err)
		return err
	}
	return nil
}
