// Package ui provides ANSI color helpers for CLI output.
package ui

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/meulenbelt/tendergraph/internal/model"
)

// ANSI 256-color codes.
const (
	colorAccent = 74  // blue, headers and identifiers
	colorCmd    = 250 // light gray, command names
	colorMuted  = 245 // gray, secondary text
	colorGreen  = 114
	colorYellow = 179
	colorRed    = 167
	colorDim    = 240
)

var noColor bool

// ForceNoColor disables colored output for the process.
func ForceNoColor() {
	noColor = true
}

// ShouldUseColor reports whether stdout wants ANSI colors, honoring
// NO_COLOR and CLICOLOR conventions.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") == "1" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// RenderAccent colors s with the accent color.
func RenderAccent(s string) string {
	return render(colorAccent, s)
}

// RenderMuted colors s with the muted color.
func RenderMuted(s string) string {
	return render(colorMuted, s)
}

// RenderCommand colors s as a command name.
func RenderCommand(s string) string {
	return render(colorCmd, s)
}

// RenderStatus colors a status string by its value.
func RenderStatus(status model.Status) string {
	s := string(status)
	switch status {
	case model.StatusCompleted:
		return render(colorGreen, s)
	case model.StatusInProgress:
		return render(colorYellow, s)
	case model.StatusBlocked:
		return render(colorRed, s)
	case model.StatusNotApplicable:
		return render(colorDim, s)
	default:
		return s
	}
}

func render(color int, s string) string {
	if noColor || s == "" {
		return s
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\x1b[38;5;%dm%s\x1b[0m", color, s)
	return b.String()
}
