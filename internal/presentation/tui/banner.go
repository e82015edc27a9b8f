package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{"            _       __ _               ", "#34d399"},
	{"  _ __ _  _| |___  / _| |_____ __ __   ", "#2dd4bf"},
	{" | '_| || | / -_)|  _| / _ \\ V  V /  ", "#22d3ee"},
	{" |_|  \\_,_|_\\___||_| |_\\___/\\_/\\_/   ", "#38bdf8"},
}

// PrintBanner writes the ruleflow banner to w using the terminal's color profile.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
