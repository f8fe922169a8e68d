package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/takeshy/davquery/internal/engine"
	"github.com/takeshy/davquery/internal/format"
	"github.com/takeshy/davquery/internal/query"
	"github.com/takeshy/davquery/internal/render"
)

var (
	listExt            string
	listType           string
	listMinSize        string
	listMaxSize        string
	listModifiedAfter  string
	listModifiedBefore string
	listTag            string
	listOwner          string
	listMimeType       string
	listFavorite       bool
	listHasPreview     bool
	listFormat         string
	listBare           bool
	listLong           bool
	listShowQuery      bool
	listOutput         string
)

var listCmd = &cobra.Command{
	Use:   "list [folder]",
	Short: "List a folder using filter flags",
	Long: `List one level of a folder. The flags build a query block; use
--show-query to print it instead of running it.

Example:
  davquery list /Photos --ext jpg,png --modified-after "now - 7 days"
  davquery list /Documents --min-size 1000000 --format "{{name}} ({{sizemb}} MB)"
  davquery list /Documents --long`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listExt, "ext", "", "Comma separated extensions")
	listCmd.Flags().StringVar(&listType, "type", "", "Resource type: file or folder")
	listCmd.Flags().StringVar(&listMinSize, "min-size", "", "Minimum size in bytes")
	listCmd.Flags().StringVar(&listMaxSize, "max-size", "", "Maximum size in bytes")
	listCmd.Flags().StringVar(&listModifiedAfter, "modified-after", "", "Only entries modified after this date (e.g. \"now - 7 days\", 2025-01-31)")
	listCmd.Flags().StringVar(&listModifiedBefore, "modified-before", "", "Only entries modified before this date")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Comma separated tags, any of which must be present")
	listCmd.Flags().StringVar(&listOwner, "owner", "", "Owner name")
	listCmd.Flags().StringVar(&listMimeType, "mimetype", "", "Comma separated MIME types")
	listCmd.Flags().BoolVar(&listFavorite, "favorite", false, "Only favorites")
	listCmd.Flags().BoolVar(&listHasPreview, "has-preview", false, "Only entries with a preview")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "", "Output template, e.g. \"{{name}} {{date}}\"")
	listCmd.Flags().BoolVar(&listBare, "bare", false, "Print items without bullets (list-style: none)")
	listCmd.Flags().BoolVarP(&listLong, "long", "l", false, "Show detailed information")
	listCmd.Flags().BoolVar(&listShowQuery, "show-query", false, "Print the query block and exit")
	listCmd.Flags().StringVarP(&listOutput, "output", "o", render.FormatText, "Output format: text, markdown, or json")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	q := buildListQuery(cmd, args)
	if err := q.Validate(); err != nil {
		return err
	}
	text := q.Encode()

	if listShowQuery {
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}

	if listLong {
		res, err := eng.Execute(cmd.Context(), text)
		if err != nil {
			return err
		}
		return writeLongListing(cmd.OutOrStdout(), res)
	}

	out := render.Block(cmd.Context(), eng, text)
	if err := render.Write(cmd.OutOrStdout(), listOutput, out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if out.Failed() {
		return errReported
	}
	return nil
}

// buildListQuery turns the list flags into a query. Only flags that were set
// become criteria.
func buildListQuery(cmd *cobra.Command, args []string) *query.Query {
	q := &query.Query{
		Command: query.CommandListFiles,
		Format:  listFormat,
	}
	if len(args) > 0 {
		q.Folder = args[0]
	}
	if listBare {
		q.ListStyle = "none"
	}

	add := func(key, value string) {
		if q.Filter == nil {
			q.Filter = []query.Criterion{}
		}
		q.Filter = append(q.Filter, query.Criterion{Key: key, Value: value})
	}

	flags := []struct {
		flag  string
		key   string
		value string
	}{
		{"ext", query.FilterExtension, listExt},
		{"type", query.FilterType, listType},
		{"min-size", query.FilterMinSize, listMinSize},
		{"max-size", query.FilterMaxSize, listMaxSize},
		{"modified-after", query.FilterModifiedAfter, listModifiedAfter},
		{"modified-before", query.FilterModifiedBefore, listModifiedBefore},
		{"tag", query.FilterTag, listTag},
		{"owner", query.FilterOwner, listOwner},
		{"mimetype", query.FilterMimeType, listMimeType},
		{"favorite", query.FilterFavorite, strconv.FormatBool(listFavorite)},
		{"has-preview", query.FilterHasPreview, strconv.FormatBool(listHasPreview)},
	}
	for _, f := range flags {
		if cmd.Flags().Changed(f.flag) && strings.TrimSpace(f.value) != "" {
			add(f.key, strings.TrimSpace(f.value))
		}
	}

	return q
}

func writeLongListing(w io.Writer, res *engine.Result) error {
	if len(res.Files) == 0 {
		fmt.Fprintf(w, "No files matched in %s\n", res.Folder)
		return nil
	}

	fmt.Fprintf(w, "Files in %s (%d total):\n\n", res.Folder, len(res.Files))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tSIZE\tMODIFIED\tOWNER\tTAGS\tFLAGS")
	fmt.Fprintln(tw, "----\t----\t----\t--------\t-----\t----\t-----")
	for _, f := range res.Files {
		modified := ""
		if t, ok := f.ModifiedTime(); ok {
			modified = t.Local().Format("2006-01-02 15:04:05")
		}
		flags := ""
		if f.Favorite {
			flags += format.FavoriteGlyph
		}
		if f.HasPreview {
			flags += format.PreviewGlyph
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			f.Name,
			f.Type,
			formatSize(f.Size),
			modified,
			f.Owner,
			strings.Join(f.Tags, ","),
			flags,
		)
	}
	return tw.Flush()
}

func formatSize(size int64) string {
	const (
		KB = 1024
		MB = KB * 1024
		GB = MB * 1024
	)

	switch {
	case size >= GB:
		return fmt.Sprintf("%.2f GB", float64(size)/GB)
	case size >= MB:
		return fmt.Sprintf("%.2f MB", float64(size)/MB)
	case size >= KB:
		return fmt.Sprintf("%.2f KB", float64(size)/KB)
	default:
		return fmt.Sprintf("%d B", size)
	}
}
