package cmd

import (
	"fmt"

	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show information about the mcstarter project",
	Long: `Displays the mcstarter version, the configuration layers and whether each
one was found, the lockfile path, and the cache directory with its entry count
and size.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, _ := resolveConfig(false) // ok if config doesn't exist
		c, _ := newCache()

		result, err := engine.Info(version, res, c, configPath, lockfilePath)
		if err != nil {
			return err
		}

		fmt.Printf("mcstarter %s\n", result.Version)
		if len(result.ConfigChain) > 1 {
			fmt.Println("  config chain:")
			for _, layer := range result.ConfigChain {
				status := "not found"
				if layer.Loaded {
					status = "loaded"
				}
				fmt.Printf("    %-10s %s (%s)\n", layer.Kind+":", layer.Path, status)
			}
		} else {
			fmt.Printf("  config:        %s\n", result.ConfigPath)
		}
		if res != nil {
			fmt.Printf("  artifacts:     %d\n", result.Artifacts)
		}

		fmt.Printf("  lockfile:      %s\n", result.LockPath)
		fmt.Printf("  cache dir:     %s\n", result.CacheDir)
		fmt.Printf("  cache entries: %d\n", result.CacheEntries)
		fmt.Printf("  cache size:    %s\n", humanSize(result.CacheSize))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
