package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pdfDataset(uid, name string, files ...model.FileRef) model.Dataset {
	return model.Dataset{UID: uid, Name: name, Type: "PDF", Files: files}
}

func TestDownloadFromCache(t *testing.T) {
	root := t.TempDir()
	files := newFakeFiles()

	cached := filepath.Join(t.TempDir(), "12345.pdf")
	require.NoError(t, os.WriteFile(cached, []byte("drawing bytes"), 0644))
	files.cache["f1"] = cached

	d := NewDownloader(files, nil)
	results := d.Download(context.Background(), "12345",
		[]model.Dataset{pdfDataset("d1", "DWG_PDF", model.FileRef{UID: "f1", Name: "12345.pdf"})}, root)

	require.Len(t, results, 1)
	assert.Equal(t, model.OutcomeCache, results[0].Outcome)
	assert.Zero(t, files.ticketCalls, "cache hit must not request a ticket")

	data, err := os.ReadFile(filepath.Join(root, "12345", "12345.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "drawing bytes", string(data))
}

func TestDownloadTicketFallback(t *testing.T) {
	root := t.TempDir()
	files := newFakeFiles()
	files.content["f1"] = []byte("streamed bytes")

	d := NewDownloader(files, nil)
	results := d.Download(context.Background(), "12345",
		[]model.Dataset{pdfDataset("d1", "DWG_PDF", model.FileRef{UID: "f1", Name: "12345.pdf"})}, root)

	require.Len(t, results, 1)
	assert.Equal(t, model.OutcomeNetwork, results[0].Outcome)
	assert.Equal(t, 1, files.ticketCalls)
	assert.Equal(t, filepath.Join(root, "12345", "12345.pdf"), results[0].LocalPath)

	data, err := os.ReadFile(results[0].LocalPath)
	require.NoError(t, err)
	assert.Equal(t, "streamed bytes", string(data))
}

func TestDownloadFailureIsPerFile(t *testing.T) {
	root := t.TempDir()
	files := newFakeFiles()
	// f1 fails both paths; f2 succeeds over the network.
	files.content["f2"] = []byte("ok")

	d := NewDownloader(files, nil)
	results := d.Download(context.Background(), "12345", []model.Dataset{
		pdfDataset("d1", "DWG_PDF",
			model.FileRef{UID: "f1", Name: "broken.pdf"},
			model.FileRef{UID: "f2", Name: "fine.pdf"},
		),
	}, root)

	require.Len(t, results, 2)
	assert.Equal(t, model.OutcomeFailed, results[0].Outcome)
	assert.NotEmpty(t, results[0].Err)
	assert.Equal(t, model.OutcomeNetwork, results[1].Outcome)
}

func TestDownloadTicketErrorRecorded(t *testing.T) {
	root := t.TempDir()
	files := newFakeFiles()
	files.ticketErr = errors.New("file service unavailable")

	d := NewDownloader(files, nil)
	results := d.Download(context.Background(), "12345",
		[]model.Dataset{pdfDataset("d1", "DWG_PDF", model.FileRef{UID: "f1", Name: "12345.pdf"})}, root)

	require.Len(t, results, 1)
	assert.Equal(t, model.OutcomeFailed, results[0].Outcome)
	assert.Contains(t, results[0].Err, "file service unavailable")
}

func TestDownloadSkipsDatasetsWithoutFiles(t *testing.T) {
	root := t.TempDir()
	d := NewDownloader(newFakeFiles(), nil)

	results := d.Download(context.Background(), "12345",
		[]model.Dataset{pdfDataset("d1", "empty")}, root)

	assert.Empty(t, results)
	_, err := os.Stat(filepath.Join(root, "12345"))
	assert.True(t, os.IsNotExist(err), "no files, no folder")
}

func TestDownloadRepeatedRunUsesSuffix(t *testing.T) {
	root := t.TempDir()
	files := newFakeFiles()
	files.content["f1"] = []byte("second run")

	dir := filepath.Join(root, "12345")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "12345.pdf"), []byte("first run"), 0644))

	d := NewDownloader(files, nil)
	results := d.Download(context.Background(), "12345",
		[]model.Dataset{pdfDataset("d1", "DWG_PDF", model.FileRef{UID: "f1", Name: "12345.pdf"})}, root)

	require.Len(t, results, 1)
	assert.Equal(t, filepath.Join(dir, "12345_1.pdf"), results[0].LocalPath)

	data, err := os.ReadFile(filepath.Join(dir, "12345.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "first run", string(data), "prior run's file untouched")
}
