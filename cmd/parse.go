package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/takeshy/davquery/internal/filter"
	"github.com/takeshy/davquery/internal/query"
)

var parseText string

var parseCmd = &cobra.Command{
	Use:   "parse [file|-]",
	Short: "Show how a query block is parsed",
	Long: `Parse a query block without contacting the server and print the result
as YAML. Ignored lines and filter keys that have no effect are reported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseText, "text", "t", "", "Query block text")
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	text := parseText
	if text == "" {
		var err error
		text, err = readQueryText(args, cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	q := query.Parse(text)

	data, err := yaml.Marshal(q)
	if err != nil {
		return fmt.Errorf("failed to marshal query: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), string(data))

	errOut := cmd.ErrOrStderr()
	if q.Command != query.CommandListFiles {
		fmt.Fprintf(errOut, "warning: command %q is not supported (expected %q)\n", q.Command, query.CommandListFiles)
	}
	for _, c := range q.Filter {
		if !filter.Known(c.Key) {
			fmt.Fprintf(errOut, "warning: filter key %q is ignored\n", c.Key)
		}
	}
	for _, d := range q.Diagnostics {
		fmt.Fprintf(errOut, "warning: line %d ignored (%s): %s\n", d.Line, d.Reason, d.Text)
	}

	return nil
}
