package download

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/handiism/drawing-downloader/internal/ioutils"
)

// PathAllocator computes collision-free destination paths for downloaded
// files, keeping a stable folder-per-identifier layout.
//
// Destination shape: root/<item_identifier>/<file_name>. When that exact
// path already exists (a prior run staged the same file), the allocator
// appends a numeric suffix before the extension — name_1.ext, name_2.ext —
// scanning upward until an unused name is found. Existing files are never
// overwritten.
type PathAllocator struct{}

// NewPathAllocator creates a PathAllocator.
func NewPathAllocator() *PathAllocator {
	return &PathAllocator{}
}

// ItemDir returns the destination directory for one item identifier.
func (a *PathAllocator) ItemDir(root, identifier string) string {
	return filepath.Join(root, ioutils.SanitizeFileName(identifier))
}

// Allocate returns a destination path under root/identifier that no
// existing file occupies. The path is not reserved; the caller is expected
// to create the file immediately.
func (a *PathAllocator) Allocate(root, identifier, fileName string) string {
	dir := a.ItemDir(root, identifier)
	name := ioutils.SanitizeFileName(fileName)

	dst := filepath.Join(dir, name)
	if !exists(dst) {
		return dst
	}

	ext := filepath.Ext(name)
	stem := name[:len(name)-len(ext)]
	for k := 1; ; k++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, k, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
