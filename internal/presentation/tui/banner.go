package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`                                        __ _   `,
	` _ __   __ _  __ _  ___  ___ _ __ __ _ / _| |_ `,
	`| '_ \ / _' |/ _' |/ _ \/ __| '__/ _' | |_| __|`,
	`| |_) | (_| | (_| |  __/ (__| | | (_| |  _| |_ `,
	`| .__/ \__,_|\__, |\___|\___|_|  \__,_|_|  \__|`,
	`|_|          |___/                             `,
}

// Indigo to rose, one stop per line.
var bannerColors = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the pagecraft banner to w, colored when w is a terminal.
func PrintBanner(w io.Writer) {
	out := termenv.NewOutput(w)
	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, out.String(line).Foreground(out.Color(bannerColors[i])))
	}
	fmt.Fprintln(w)
}
