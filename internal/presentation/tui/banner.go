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
	{`      _                             `, "#818cf8"},
	{`  ___| |_ ___ _ __  _ __   ___ _ __ `, "#a78bfa"},
	{` / __| __/ _ \ '_ \| '_ \ / _ \ '__|`, "#c084fc"},
	{` \__ \ ||  __/ |_) | |_) |  __/ |   `, "#e879f9"},
	{` |___/\__\___| .__/| .__/ \___|_|   `, "#f472b6"},
	{`             |_|   |_|              `, "#fb7185"},
}

// PrintBanner writes the ASCII art banner, colored when the terminal supports it.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for _, l := range bannerLines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w)
}
