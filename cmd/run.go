package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/batch"
	"github.com/takeshy/davquery/internal/render"
	"github.com/takeshy/davquery/internal/store"
)

var (
	runAll    bool
	runOutput string
)

var runCmd = &cobra.Command{
	Use:   "run [NAME...]",
	Short: "Run saved queries",
	Long: `Run one or more saved queries. Queries run in parallel (see --parallelism)
and are printed in the order given.

Example:
  davquery run photos
  davquery run photos recent --output markdown
  davquery run --all`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().BoolVarP(&runAll, "all", "a", false, "Run every saved query")
	runCmd.Flags().StringVarP(&runOutput, "output", "o", render.FormatText, "Output format: text, markdown, or json")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	storeManager, err := store.NewManager(cfg.DataFilePath())
	if err != nil {
		return fmt.Errorf("failed to initialize store manager: %w", err)
	}

	names := args
	if runAll {
		names = nil
		for _, q := range storeManager.ListQueries() {
			names = append(names, q.Name)
		}
	}
	if len(names) == 0 {
		if runAll {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved queries")
			return nil
		}
		return fmt.Errorf("at least one query name is required (or use --all)")
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	runner := batch.NewRunner(eng, storeManager, cfg.Workers())
	results := runner.RunAll(cmd.Context(), names, nil)

	w := cmd.OutOrStdout()
	failed := 0
	outputs := make([]namedOutput, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			failed++
			outputs = append(outputs, namedOutput{Name: r.Name, Output: render.Output{Items: []string{}, Err: r.Err.Error()}})
			continue
		}
		storeManager.MarkRun(r.Name)
		outputs = append(outputs, namedOutput{Name: r.Name, Output: render.FromResult(r.Result)})
	}

	if err := writeRunOutputs(w, outputs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := storeManager.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record run times: %v\n", err)
	}

	if failed > 0 {
		if len(results) > 1 {
			fmt.Fprintf(os.Stderr, "\n%d of %d queries failed\n", failed, len(results))
		}
		return errReported
	}
	return nil
}

type namedOutput struct {
	Name string `json:"name"`
	render.Output
}

func writeRunOutputs(w io.Writer, outputs []namedOutput) error {
	if runOutput == render.FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(outputs)
	}

	for i, o := range outputs {
		if len(outputs) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			if runOutput == render.FormatMarkdown {
				fmt.Fprintf(w, "## %s\n\n", o.Name)
			} else {
				fmt.Fprintf(w, "%s:\n", o.Name)
			}
		}
		if err := render.Write(w, runOutput, o.Output); err != nil {
			return err
		}
	}
	return nil
}
