package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initForce bool

// initTemplate is the default mcstarter.yml scaffold.
const initTemplate = `# mcstarter configuration

# Directories whose mcstarter.yml and files are layered under this project,
# in order. Later entries win; this file wins over all of them.
# include:
#   - ./modpack

# URL templates; $NAME and $VERSION are replaced per artifact.
sources:
  paper: https://api.papermc.io/v2/projects/paper/versions/$VERSION/builds/latest/downloads/paper-$VERSION.jar
  # hangar: https://hangar.example.com/api/v1/projects/$NAME/versions/$VERSION/PAPER/download

# Source used by artifacts that set neither url nor source.
# default_source: hangar

core:
  name: paper
  version: "1.20.4"
  source: paper

plugins:
  # worldedit:
  #   version: "7.3.0"
  #   url: https://cdn.example.com/worldedit-7.3.0.jar

launch:
  # command: java
  pre: ["-Xms1G", "-Xmx2G"]
  post: ["--nogui"]

# Glob patterns of project files never copied into the target.
# ignore:
#   - "*.md"
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter mcstarter.yml configuration",
	Long: `Creates an mcstarter.yml file in the current directory with a commented
template: a Paper core pulled from a source template, an example plugin and
JVM launch arguments.

Use --force to overwrite an existing configuration file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath := configPath
		if !filepath.IsAbs(outPath) {
			abs, err := filepath.Abs(outPath)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			outPath = abs
		}

		if !initForce {
			if _, err := os.Stat(outPath); err == nil {
				return fmt.Errorf("%s already exists (use --force to overwrite)", outPath)
			}
		}

		if err := os.WriteFile(outPath, []byte(initTemplate), 0644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		info("Created %s", outPath)
		info("")
		info("Next steps:")
		info("  1. Edit the file to pick your core and plugins")
		info("  2. Run 'mcstarter lock' to download and pin every artifact")
		info("  3. Run 'mcstarter build' to stage the server into target/")
		info("  4. Run 'mcstarter launch' to start it")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
