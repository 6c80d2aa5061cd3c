package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/magnetrade/internal/presentation/tui"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// renderer picks glamour for terminals and plain markdown otherwise.
func renderer(w io.Writer, plain bool) (tui.Renderer, error) {
	if plain || !isTerminal(w) {
		return tui.PlainRenderer(), nil
	}
	f := w.(*os.File)
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		width = 0
	}
	return tui.NewRenderer(width)
}

func printMarkdown(w io.Writer, markdown string, plain bool) error {
	render, err := renderer(w, plain)
	if err != nil {
		return err
	}
	out, err := render(markdown)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
