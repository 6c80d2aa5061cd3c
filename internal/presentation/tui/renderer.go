package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal output.
type Renderer func(markdown string) (string, error)

// NewRenderer returns a glamour renderer that adapts to the terminal background.
func NewRenderer(width int) (Renderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create markdown renderer: %w", err)
	}
	return r.Render, nil
}

// PlainRenderer returns markdown unchanged, for pipes and files.
func PlainRenderer() Renderer {
	return func(markdown string) (string, error) {
		return markdown, nil
	}
}
