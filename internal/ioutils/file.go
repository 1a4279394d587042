package ioutils

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

var (
	invalidChars  = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	trailingDots  = regexp.MustCompile(`\.+$`)
	multipleSpace = regexp.MustCompile(`\s+`)
)

// CopyFile copies a file from src to dst.
//
// dst is created with mode 0644. The destination must not already exist;
// collision handling belongs to the path allocator, and staging never
// overwrites files from prior runs.
//
// Example:
//
//	err := CopyFile(ctx, cachePath, "/downloads/12345/12345.pdf")
func CopyFile(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	return nil
}

// SanitizeFileName removes or replaces characters that are invalid in
// file/folder names.
//
// Drawing names come from server-side object names and frequently carry
// characters Windows rejects. The following transformations are applied:
//   - Invalid characters (<>:"/\|?* and control chars 0x00-0x1f) → underscore
//   - Trailing dots → removed (Windows limitation)
//   - Multiple whitespace → single space
//   - Trailing whitespace → removed
//
// Example:
//
//	SanitizeFileName("DWG: 1/2.pdf")  // Returns "DWG_ 1_2.pdf"
//	SanitizeFileName("Drawing...")    // Returns "Drawing"
func SanitizeFileName(name string) string {
	name = invalidChars.ReplaceAllString(name, "_")
	name = trailingDots.ReplaceAllString(name, "")
	name = multipleSpace.ReplaceAllString(name, " ")
	return strings.TrimRight(name, " ")
}

// EnsureDir creates a directory and all parent directories if they don't
// exist. Directories are created with mode 0755.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}
