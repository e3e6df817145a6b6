package cmd

import (
	"github.com/bianoble/mcstarter/internal/engine"
	"github.com/spf13/cobra"
)

var downloadJobs int

var downloadCmd = &cobra.Command{
	Use:     "download",
	Aliases: []string{"cache"},
	Short:   "Fill the cache with every locked artifact",
	Long: `Downloads every artifact whose locked digest is not in the cache yet and
checks the bytes against the lockfile. Artifacts already in the cache are
trusted without a network call. The target directory is not touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		lf, err := loadLockfile()
		if err != nil {
			return err
		}
		c, err := newCache()
		if err != nil {
			return err
		}

		eng := &engine.DownloadEngine{Cache: c, Jobs: downloadJobs}
		result, err := eng.Download(cmd.Context(), cfg, lf)
		if err != nil {
			return err
		}

		for _, name := range result.Fetched {
			info("  @G{fetched}  %s", name)
		}
		for _, name := range result.Hits {
			detail("cached   %s", name)
		}
		info("")
		info("Download complete: %d fetched (%s), %d already cached.",
			len(result.Fetched), humanSize(result.Bytes), len(result.Hits))
		return nil
	},
}

func init() {
	downloadCmd.Flags().IntVar(&downloadJobs, "jobs", engine.DefaultJobs, "number of concurrent downloads")
	rootCmd.AddCommand(downloadCmd)
}
