package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var forceDelete bool

var deleteCmd = &cobra.Command{
	Use:   "delete NAME...",
	Short: "Delete saved queries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&forceDelete, "force", "f", false, "Force deletion without confirmation")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	storeManager, err := openStore()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()

	var names []string
	for _, name := range args {
		if _, err := storeManager.GetQuery(name); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "  ✗ %s: not found\n", name)
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return fmt.Errorf("no matching saved queries")
	}

	fmt.Fprintln(w, "Queries to be deleted:")
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
	}

	if !forceDelete {
		fmt.Fprint(w, "\nAre you sure you want to delete these queries? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Fprintln(w, "Deletion cancelled")
			return nil
		}
	}

	for _, name := range names {
		storeManager.RemoveQuery(name)
	}

	if err := storeManager.Save(); err != nil {
		return fmt.Errorf("failed to save store data: %w", err)
	}

	fmt.Fprintf(w, "\nDeleted %d queries\n", len(names))
	for _, name := range names {
		fmt.Fprintf(w, "  ✓ %s\n", name)
	}
	return nil
}
