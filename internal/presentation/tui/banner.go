package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the hotelbot banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  _           _       _ _           _   ", "#38bdf8"},
		{" | |__   ___ | |_ ___| | |__   ___ | |_ ", "#22d3ee"},
		{" | '_ \\ / _ \\| __/ _ \\ | '_ \\ / _ \\| __|", "#2dd4bf"},
		{" | | | | (_) | ||  __/ | |_) | (_) | |_ ", "#34d399"},
		{" |_| |_|\\___/ \\__\\___|_|_.__/ \\___/ \\__|", "#4ade80"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

// Speaker returns the colored label printed before a message.
func Speaker(bot bool) string {
	p := termenv.ColorProfile()
	if bot {
		return termenv.String("bot ›").Foreground(p.Color("#2dd4bf")).Bold().String()
	}
	return termenv.String("you ›").Foreground(p.Color("#818cf8")).Bold().String()
}

