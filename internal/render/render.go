// Package render turns query blocks into display output. Failures never
// escape: they become an inline error line.
package render

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/takeshy/davquery/internal/engine"
)

const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"

	Bullet     = "•"
	ErrorGlyph = "✗"
)

var (
	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))
)

// Runner executes a query block
type Runner interface {
	Execute(ctx context.Context, text string) (*engine.Result, error)
}

// Output is what a rendering surface shows for one block
type Output struct {
	Items []string `json:"items"`
	Total int      `json:"total"`
	Bare  bool     `json:"bare"`
	Err   string   `json:"error,omitempty"`
}

// Failed reports whether the block produced an error
func (o Output) Failed() bool {
	return o.Err != ""
}

// Block runs text and converts any failure into Output.Err
func Block(ctx context.Context, r Runner, text string) Output {
	res, err := r.Execute(ctx, text)
	if err != nil {
		return Output{Items: []string{}, Err: err.Error()}
	}
	return FromResult(res)
}

// FromResult converts an engine result
func FromResult(res *engine.Result) Output {
	items := res.Items
	if items == nil {
		items = []string{}
	}
	return Output{Items: items, Total: len(items), Bare: res.Bare}
}

// Write renders out in the named format
func Write(w io.Writer, format string, out Output) error {
	switch format {
	case "", FormatText:
		return WriteText(w, out)
	case FormatMarkdown, "md":
		return WriteMarkdown(w, out)
	case FormatJSON:
		return WriteJSON(w, out)
	default:
		return fmt.Errorf("unknown output format: %s (use text, markdown or json)", format)
	}
}

// WriteText writes one line per item. Styling is applied only on terminals.
func WriteText(w io.Writer, out Output) error {
	styled := isTerminal(w)

	if out.Failed() {
		line := ErrorGlyph + " " + out.Err
		if styled {
			line = errorStyle.Render(line)
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}

	for _, item := range out.Items {
		line := item
		if !out.Bare {
			bullet := Bullet
			if styled {
				bullet = bulletStyle.Render(bullet)
			}
			line = bullet + " " + item
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if styled && len(out.Items) == 0 {
		_, err := fmt.Fprintln(w, mutedStyle.Render("(no files)"))
		return err
	}
	return nil
}

// WriteMarkdown writes a markdown list, or plain lines when the output is bare
func WriteMarkdown(w io.Writer, out Output) error {
	if out.Failed() {
		_, err := fmt.Fprintf(w, "> %s %s\n", ErrorGlyph, out.Err)
		return err
	}

	for _, item := range out.Items {
		prefix := "- "
		if out.Bare {
			prefix = ""
		}
		if _, err := fmt.Fprintf(w, "%s%s\n", prefix, item); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON writes out as indented JSON
func WriteJSON(w io.Writer, out Output) error {
	if out.Items == nil {
		out.Items = []string{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(out)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
