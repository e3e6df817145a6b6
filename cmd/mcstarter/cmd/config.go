package cmd

import (
	"fmt"
	"os"

	"github.com/bianoble/mcstarter/internal/document"
	"github.com/spf13/cobra"
)

var (
	configQuery string
	configNoEnv bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the resolved configuration",
	Long: `Prints the configuration after every include has been merged in and
${NAME} placeholders have been substituted, as YAML. --no-env skips the
substitution. --query evaluates a JSONPath expression such as
'$.plugins.*.version' against the merged document and prints the matches as
JSON, one per line.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := resolveConfig(!configNoEnv)
		if err != nil {
			return err
		}

		if configQuery == "" {
			out, err := document.EncodeYAML(res.Document)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(out)
			return err
		}

		matches, err := document.Query(res.Document, configQuery)
		if err != nil {
			return err
		}
		if len(matches) == 0 {
			return fmt.Errorf("no match for %s", configQuery)
		}
		for _, m := range matches {
			out, err := document.EncodeJSON(m)
			if err != nil {
				return err
			}
			if len(out) == 0 {
				out = []byte("null\n")
			}
			if _, err := os.Stdout.Write(out); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	configCmd.Flags().StringVar(&configQuery, "query", "", "JSONPath expression to evaluate against the merged config")
	configCmd.Flags().BoolVar(&configNoEnv, "no-env", false, "do not substitute ${NAME} placeholders")
	rootCmd.AddCommand(configCmd)
}
