package download

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/handiism/drawing-downloader/internal/config"
	"github.com/handiism/drawing-downloader/internal/ioutils"
	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/handiism/drawing-downloader/internal/plm"
	"golang.org/x/sync/errgroup"
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// ProgressEvent represents a pipeline progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Manager drives the resolution → discovery → download pipeline for a batch
// of item identifiers and aggregates the outcomes into a RunReport.
//
// Identifiers are processed independently; the result of one never affects
// another, and a single identifier's unexpected error is recorded without
// stopping the rest of the batch.
type Manager struct {
	settings *config.Settings
	session  *plm.Session
	policy   plm.PropertyPolicy

	resolver   *plm.Resolver
	discoverer *plm.Discoverer
	downloader *Downloader

	onProgress func(ProgressEvent)
	logger     *slog.Logger

	totalItems     atomic.Int32
	processedItems atomic.Int32
}

// NewManager creates a Manager processing through session.
//
// onProgress, when non-nil, receives a stream of human-readable progress
// events suitable for a console or TUI log pane.
func NewManager(settings *config.Settings, session *plm.Session, onProgress func(ProgressEvent), logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		settings:   settings,
		session:    session,
		policy:     plm.DefaultPolicy(),
		resolver:   plm.NewResolver(session.Repo, settings.RevisionRule, logger),
		discoverer: plm.NewDiscoverer(session.Repo, logger),
		downloader: NewDownloader(session.Files, logger),
		onProgress: onProgress,
		logger:     logger,
	}
}

// Run processes identifiers sequentially on the Manager's session and
// returns the run report.
//
// The property-prefetch policy is applied and the destination root created
// before any identifier is processed; failure of either is a configuration
// error that aborts the whole run. Cancellation is checked between
// identifiers: identifiers processed before cancellation stay valid and
// complete, the remainder is reported not-processed.
func (m *Manager) Run(ctx context.Context, identifiers []string) (*model.RunReport, error) {
	if err := m.prepare(ctx); err != nil {
		return nil, err
	}

	report := model.NewRunReport()
	m.totalItems.Store(int32(len(identifiers)))
	m.processedItems.Store(0)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Processing %d item id(s)...", len(identifiers)), Level: LevelInfo})

	for _, id := range identifiers {
		if ctx.Err() != nil {
			report.Append(model.ItemReport{Identifier: id, Status: model.StatusNotProcessed})
			continue
		}
		report.Append(m.processOne(ctx, id))
		m.processedItems.Add(1)
	}

	report.Finish()
	return report, nil
}

// RunParallel processes identifiers across workers, one independently
// authenticated session per worker. The unit of concurrency is the
// identifier; workers share no mutable state and results are merged back
// into input order at the end.
//
// The Manager's own session is worker zero; sessions supplies the rest.
func (m *Manager) RunParallel(ctx context.Context, sessions []*plm.Session, identifiers []string) (*model.RunReport, error) {
	if err := m.prepare(ctx); err != nil {
		return nil, err
	}

	workers := []*Manager{m}
	for _, s := range sessions {
		w := NewManager(m.settings, s, m.onProgress, m.logger)
		if err := s.ApplyPolicy(ctx, w.policy); err != nil {
			return nil, fmt.Errorf("apply property policy: %w", err)
		}
		workers = append(workers, w)
	}

	report := model.NewRunReport()
	m.totalItems.Store(int32(len(identifiers)))
	m.processedItems.Store(0)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Processing %d item id(s) on %d session(s)...", len(identifiers), len(workers)), Level: LevelInfo})

	// Each worker owns one session; results land in disjoint slots, so the
	// only merge is the ordered copy at the end.
	results := make([]model.ItemReport, len(identifiers))
	indexes := make(chan int)

	var g errgroup.Group
	for _, w := range workers {
		w := w
		g.Go(func() error {
			for i := range indexes {
				if ctx.Err() != nil {
					results[i] = model.ItemReport{Identifier: identifiers[i], Status: model.StatusNotProcessed}
					continue
				}
				results[i] = w.processOne(ctx, identifiers[i])
				m.processedItems.Add(1)
			}
			return nil
		})
	}

	for i := range identifiers {
		indexes <- i
	}
	close(indexes)

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range results {
		report.Append(r)
	}
	report.Finish()
	return report, nil
}

// prepare applies the property policy and establishes the destination root.
// Both are configuration-level concerns: a failure affects every identifier
// and aborts the run.
func (m *Manager) prepare(ctx context.Context) error {
	if err := m.session.ApplyPolicy(ctx, m.policy); err != nil {
		return fmt.Errorf("apply property policy: %w", err)
	}
	if err := ioutils.EnsureDir(m.settings.DownloadsPath); err != nil {
		return fmt.Errorf("destination root %s: %w", m.settings.DownloadsPath, err)
	}
	return nil
}

// processOne runs the full pipeline for a single identifier. Remote
// failures are absorbed here and reported as a per-identifier error status.
func (m *Manager) processOne(ctx context.Context, identifier string) model.ItemReport {
	m.progress(ProgressEvent{Message: fmt.Sprintf("%s: resolving...", identifier), Level: LevelVerbose})

	res, err := m.resolver.Resolve(ctx, identifier)
	if errors.Is(err, plm.ErrNotFound) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: not found", identifier), Level: LevelWarning})
		return model.ItemReport{Identifier: identifier, Status: model.StatusNotFound}
	}
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: query failed - %v", identifier, err), Level: LevelError})
		return model.ItemReport{Identifier: identifier, Status: model.StatusError, Message: err.Error()}
	}

	if res.Item != nil && res.Item.Name != "" {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", identifier, res.Item.Name), Level: LevelInfo})
	}

	datasets, err := m.discoverer.Discover(ctx, res.Revision, res.Datasets, m.settings.WantedTypes, m.settings.MaxRelationDepth)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: discovery failed - %v", identifier, err), Level: LevelError})
		return model.ItemReport{Identifier: identifier, Status: model.StatusError, Message: err.Error()}
	}
	if len(datasets) == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: no drawings found", identifier), Level: LevelWarning})
		return model.ItemReport{Identifier: identifier, Status: model.StatusNoDatasets}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("%s: found %d dataset(s), downloading...", identifier, len(datasets)), Level: LevelInfo})

	results := m.downloader.Download(ctx, identifier, datasets, m.settings.DownloadsPath)
	for _, r := range results {
		if r.Outcome == model.OutcomeFailed {
			m.progress(ProgressEvent{Message: fmt.Sprintf("  failed %s: %s", r.FileName, r.Err), Level: LevelError})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("  saved %s", r.FileName), Level: LevelSuccess})
	}

	return model.ItemReport{Identifier: identifier, Status: model.StatusDownloaded, Results: results}
}

// Progress returns how many identifiers have completed out of the total
// for the run in flight. Safe to call from another goroutine.
func (m *Manager) Progress() (processed, total int32) {
	return m.processedItems.Load(), m.totalItems.Load()
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
