package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/render"
)

var (
	queryOutput string
	queryText   string
)

var queryCmd = &cobra.Command{
	Use:   "query [file|-]",
	Short: "Run a query block",
	Long: `Run a query block read from a file, from stdin, or given with --text.

Example:
  davquery query photos.dq
  printf 'command: List Files\nfolder: /Photos\n' | davquery query
  davquery query --text "command: List Files
folder: /Documents
filter:
    - extension: pdf
format: {{name}} ({{sizemb}} MB)"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", render.FormatText, "Output format: text, markdown, or json")
	queryCmd.Flags().StringVarP(&queryText, "text", "t", "", "Query block text")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	text := queryText
	if text == "" {
		var err error
		text, err = readQueryText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	out := render.Block(cmd.Context(), eng, text)
	if err := render.Write(cmd.OutOrStdout(), queryOutput, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if out.Failed() {
		return errReported
	}
	return nil
}
