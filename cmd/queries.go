package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var queriesLong bool

var queriesCmd = &cobra.Command{
	Use:   "queries",
	Short: "List saved queries",
	Args:  cobra.NoArgs,
	RunE:  runQueries,
}

func init() {
	queriesCmd.Flags().BoolVarP(&queriesLong, "long", "l", false, "Show the query text")
	rootCmd.AddCommand(queriesCmd)
}

func runQueries(cmd *cobra.Command, args []string) error {
	storeManager, err := openStore()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	queries := storeManager.ListQueries()
	if len(queries) == 0 {
		fmt.Fprintf(w, "No saved queries in %s\n", storeManager.Path())
		return nil
	}

	if queriesLong {
		for i, q := range queries {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "%s (updated %s)\n", q.Name, q.UpdatedAt.Format("2006-01-02 15:04:05"))
			for _, line := range strings.Split(strings.TrimRight(q.Text, "\n"), "\n") {
				fmt.Fprintf(w, "  %s\n", line)
			}
		}
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tFOLDER\tUPDATED\tLAST RUN")
	fmt.Fprintln(tw, "----\t------\t-------\t--------")
	for _, q := range queries {
		folder := q.Folder
		if folder == "" {
			folder = "/"
		}
		lastRun := "never"
		if !q.LastRunAt.IsZero() {
			lastRun = q.LastRunAt.Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			q.Name,
			folder,
			q.UpdatedAt.Format("2006-01-02 15:04:05"),
			lastRun,
		)
	}
	return tw.Flush()
}
