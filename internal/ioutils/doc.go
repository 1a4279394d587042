// Package ioutils provides file system utilities for the drawing-downloader.
//
// This package contains functions for:
//   - Copying cached files into the destination tree
//   - Filename sanitization
//   - Directory creation
//
// All functions that accept a context.Context respect cancellation,
// though file operations themselves may not be interruptible.
package ioutils
