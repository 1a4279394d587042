// Package main provides the interactive TUI for the drawing-downloader.
package main

import (
	"fmt"
	"os"

	"github.com/handiism/drawing-downloader/internal/tui"
)

func main() {
	if err := tui.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
