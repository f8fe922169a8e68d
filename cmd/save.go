package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/store"
)

var saveText string

var saveCmd = &cobra.Command{
	Use:   "save NAME [file|-]",
	Short: "Save a query block under a name",
	Long: `Save a query block so it can be run later with "davquery run NAME" or
the run_saved MCP tool. Saving an existing name replaces its text.

Example:
  davquery save photos photos.dq
  davquery save recent --text "command: List Files
filter:
    - modifiedafter: now - 1 day"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVarP(&saveText, "text", "t", "", "Query block text")
	rootCmd.AddCommand(saveCmd)
}

func runSave(cmd *cobra.Command, args []string) error {
	name := args[0]

	text := saveText
	if text == "" {
		var err error
		text, err = readQueryText(args[1:], cmd.InOrStdin())
		if err != nil {
			return err
		}
	}

	storeManager, err := openStore()
	if err != nil {
		return err
	}

	saved, err := storeManager.SaveQuery(name, text)
	if err != nil {
		return err
	}

	if err := storeManager.Save(); err != nil {
		return fmt.Errorf("failed to save store data: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved query '%s' to %s\n", saved.Name, storeManager.Path())
	return nil
}

// openStore opens the saved query file selected by config and flags
func openStore() (*store.Manager, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	storeManager, err := store.NewManager(cfg.DataFilePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store manager: %w", err)
	}
	return storeManager, nil
}
