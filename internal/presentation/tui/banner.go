package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []string{
	`   ____ __  __ ____                      _ `,
	`  / ___|  \/  | __ )  ___   __ _ _ __ __| |`,
	` | |  _| |\/| |  _ \ / _ \ / _' | '__/ _' |`,
	` | |_| | |  | | |_) | (_) | (_| | | | (_| |`,
	`  \____|_|  |_|____/ \___/ \__,_|_|  \__,_|`,
}

// bannerColors run from terminal green to amber.
var bannerColors = []string{"#22c55e", "#4ade80", "#a3e635", "#facc15", "#f59e0b"}

// PrintBanner writes the startup banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()

	fmt.Fprintln(w)
	for i, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line).Foreground(p.Color(bannerColors[i])))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, termenv.String("  THE COMPUTER IS YOUR FRIEND  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
