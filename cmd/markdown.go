package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"
)

// renderMarkdown formats md for the terminal. Output redirected to a file is left as is.
func renderMarkdown(md string) string {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints md on stdout.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}
