// Package ui provides the converter's colored console output.
package ui

import (
	"os"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

// Success prints a green status line to stdout.
func Success(format string, args ...any) {
	green.Printf("✓ "+format+"\n", args...)
}

// Warning prints a yellow warning line to stderr.
func Warning(format string, args ...any) {
	yellow.Fprintf(os.Stderr, "⚠ "+format+"\n", args...)
}

// Error prints a red error line to stderr.
func Error(format string, args ...any) {
	red.Fprintf(os.Stderr, "✗ "+format+"\n", args...)
}
