// Package config holds the persistent settings for the drawing-downloader.
//
// Settings are stored as YAML at ~/.config/drawing-downloader/config.yaml
// by default. Load falls back to defaults when no file exists, so a fresh
// install works without any configuration:
//
//	settings, err := config.Load(config.DefaultPath())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// The TUI saves settings back on exit; the CLI treats flags as one-shot
// overrides and never writes the file.
package config
