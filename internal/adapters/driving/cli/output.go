package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/custodia-labs/docgap/internal/core/domain"
	"github.com/custodia-labs/docgap/internal/logger"
)

// renderWidth is the word-wrap width for rendered Markdown.
const renderWidth = 100

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printMarkdown writes md to w, styled when w is a terminal.
func printMarkdown(w io.Writer, md string) error {
	if !isTerminal(w) {
		_, err := fmt.Fprintln(w, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(renderWidth),
	)
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	logger.Debug("[cli] markdown rendering failed: %v", err)
	_, err = fmt.Fprintln(w, md)
	return err
}

// nopCloser wraps a writer the command does not own.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns the file at path, or w when path is empty or "-".
func openOutput(w io.Writer, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{w}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// parseFormat validates a --format value.
func parseFormat(s string) (domain.ExportFormat, error) {
	f, ok := domain.ParseExportFormat(s)
	if !ok {
		return "", fmt.Errorf("%w: %q (use json, markdown, xml, html, xlsx or paligo)", domain.ErrUnsupportedFormat, s)
	}
	return f, nil
}

// exportTo writes with export, refusing binary output to a terminal.
func exportTo(w io.Writer, path string, format domain.ExportFormat, export func(io.Writer) error) error {
	if format == domain.ExportXLSX && (path == "" || path == "-") && isTerminal(w) {
		return fmt.Errorf("%w: xlsx output needs --out", domain.ErrInvalidInput)
	}
	out, err := openOutput(w, path)
	if err != nil {
		return err
	}
	if err := export(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
