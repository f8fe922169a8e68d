package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/webdav"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the server connection",
	Long: `Check that the WebDAV root is reachable with the configured credentials.
Nothing is listed; a single Depth 0 PROPFIND is sent.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := newClient(cfg)
	if err != nil {
		var cfgErr *engine.ConfigurationError
		if errors.As(err, &cfgErr) {
			return fmt.Errorf("%w (set them in the config file, environment or flags)", err)
		}
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Checking %s as %s...\n", client.RootURL(), cfg.Username)

	start := time.Now()
	if err := client.Ping(cmd.Context()); err != nil {
		var statusErr *webdav.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.StatusCode {
			case http.StatusUnauthorized, http.StatusForbidden:
				return fmt.Errorf("authentication failed: %w", err)
			case http.StatusNotFound:
				return fmt.Errorf("DAV root not found, check dav_path: %w", err)
			}
		}
		return fmt.Errorf("connection check failed: %w", err)
	}

	fmt.Fprintf(w, "  ✓ connected in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}
