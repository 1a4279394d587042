package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/handiism/drawing-downloader/internal/ioutils"
	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/handiism/drawing-downloader/internal/plm"
)

// Downloader stages the files of discovered datasets into the destination
// tree, preferring the local file cache over network transfer.
type Downloader struct {
	files  plm.FileStore
	alloc  *PathAllocator
	logger *slog.Logger
}

// NewDownloader creates a Downloader fetching through files.
func NewDownloader(files plm.FileStore, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{
		files:  files,
		alloc:  NewPathAllocator(),
		logger: logger,
	}
}

// Download stages every file of every dataset under root/identifier and
// returns one DownloadResult per file.
//
// Each file is tried cache-first: a warm file-management cache avoids the
// network round trip entirely, and repeated runs against the same part
// commonly hit it. On a cache miss the Downloader requests a read ticket
// and streams the file. A file that fails both paths is recorded as failed
// and never aborts sibling files or other datasets.
//
// The destination directory is created lazily before the first file is
// written, so identifiers without downloadable files leave no folder behind.
func (d *Downloader) Download(ctx context.Context, identifier string, datasets []model.Dataset, root string) []model.DownloadResult {
	var results []model.DownloadResult
	dirReady := false

	for _, ds := range datasets {
		if len(ds.Files) == 0 {
			d.logger.Warn("dataset has no file references",
				slog.String("item", identifier), slog.String("dataset", ds.Name))
			continue
		}

		for _, file := range ds.Files {
			if !dirReady {
				if err := ioutils.EnsureDir(d.alloc.ItemDir(root, identifier)); err != nil {
					results = append(results, model.DownloadResult{
						ItemIdentifier: identifier,
						DatasetName:    ds.Name,
						FileName:       file.Name,
						Outcome:        model.OutcomeFailed,
						Err:            err.Error(),
					})
					continue
				}
				dirReady = true
			}
			results = append(results, d.downloadFile(ctx, identifier, ds, file, root))
		}
	}
	return results
}

// downloadFile stages one file and returns its tagged outcome, so callers
// never branch on which retrieval path was used except for reporting.
func (d *Downloader) downloadFile(ctx context.Context, identifier string, ds model.Dataset, file model.FileRef, root string) model.DownloadResult {
	result := model.DownloadResult{
		ItemIdentifier: identifier,
		DatasetName:    ds.Name,
		FileName:       file.Name,
	}

	cached, cacheErr := d.files.CachedPath(ctx, file)
	if cacheErr == nil {
		dst := d.alloc.Allocate(root, identifier, file.Name)
		cacheErr = ioutils.CopyFile(ctx, cached, dst)
		if cacheErr == nil {
			result.LocalPath = dst
			result.Outcome = model.OutcomeCache
			d.logger.Debug("staged from cache",
				slog.String("item", identifier), slog.String("file", file.Name))
			return result
		}
	}
	if !errors.Is(cacheErr, plm.ErrCacheMiss) {
		d.logger.Warn("cache lookup failed, falling back to ticket fetch",
			slog.String("item", identifier),
			slog.String("file", file.Name),
			slog.String("error", cacheErr.Error()))
	}

	// Allocate fresh for the fallback path; a failed cache copy may have
	// left a partial file at the first allocation.
	dst := d.alloc.Allocate(root, identifier, file.Name)
	if err := d.fetchWithTicket(ctx, file, dst); err != nil {
		result.Outcome = model.OutcomeFailed
		result.Err = err.Error()
		d.logger.Error("file download failed",
			slog.String("item", identifier),
			slog.String("file", file.Name),
			slog.String("error", err.Error()))
		return result
	}

	result.LocalPath = dst
	result.Outcome = model.OutcomeNetwork
	return result
}

// fetchWithTicket requests a read ticket for file and streams the content
// to dst.
func (d *Downloader) fetchWithTicket(ctx context.Context, file model.FileRef, dst string) error {
	ticket, err := d.files.ReadTicket(ctx, file)
	if err != nil {
		return fmt.Errorf("read ticket for %s: %w", file.Name, err)
	}

	stream, err := d.files.Open(ctx, ticket)
	if err != nil {
		return fmt.Errorf("open ticket stream for %s: %w", file.Name, err)
	}
	defer stream.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, stream); err != nil {
		return fmt.Errorf("stream %s: %w", file.Name, err)
	}
	return nil
}
