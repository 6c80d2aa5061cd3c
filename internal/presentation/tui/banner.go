package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner shown by the serve command.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Green to amber, like a price chart turning.
	lines := []struct {
		text  string
		color string
	}{
		{`  __  __                        _                _      `, "#34d399"},
		{` |  \/  | __ _  __ _ _ __   ___| |_ _ __ __ _  __| | ___ `, "#4ade80"},
		{` | |\/| |/ _' |/ _' | '_ \ / _ \ __| '__/ _' |/ _' |/ _ \`, "#a3e635"},
		{` | |  | | (_| | (_| | | | |  __/ |_| | | (_| | (_| |  __/`, "#facc15"},
		{` |_|  |_|\__,_|\__, |_| |_|\___|\__|_|  \__,_|\__,_|\___|`, "#fbbf24"},
		{`               |___/                                    `, "#f59e0b"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
