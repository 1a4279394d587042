package plm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/handiism/drawing-downloader/internal/model"
)

// DefaultMaxDepth bounds the described-by-document relation walk. The cap is
// a safety measure against cyclic object graphs, not a server contract, and
// is configurable through Discover's maxDepth parameter.
const DefaultMaxDepth = 3

// Discoverer enumerates datasets of wanted types reachable from a revision.
type Discoverer struct {
	repo   Repository
	logger *slog.Logger
}

// NewDiscoverer creates a Discoverer querying through repo.
func NewDiscoverer(repo Repository, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discoverer{repo: repo, logger: logger}
}

// datasetSet accumulates datasets deduplicated by uid, preserving the order
// in which they were first discovered.
type datasetSet struct {
	seen  map[string]bool
	order []model.Dataset
}

func newDatasetSet() *datasetSet {
	return &datasetSet{seen: make(map[string]bool)}
}

func (s *datasetSet) add(ds model.Dataset) {
	if s.seen[ds.UID] {
		return
	}
	s.seen[ds.UID] = true
	s.order = append(s.order, ds)
}

// Discover returns the datasets of wanted types attached to rev, seeded with
// seed (the resolver's opportunistic finds) and deduplicated by uid.
//
// When the revision itself carries no dataset of a wanted type, Discover
// walks the described-by-document relation to each related document revision
// and collects datasets there, recursively. Drawings are frequently modeled
// as separate document objects linked to, rather than stored on, the
// engineering revision, so this walk is the common path in practice.
//
// Traversal stops at maxDepth (DefaultMaxDepth when <= 0) and skips already
// visited uids, so it terminates even on cyclic relation graphs. An empty
// result is a legitimate outcome, not an error.
func (d *Discoverer) Discover(ctx context.Context, rev *model.Revision, seed []model.Dataset, wanted []string, maxDepth int) ([]model.Dataset, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	filter := newTypeFilter(wanted)
	found := newDatasetSet()
	for _, ds := range seed {
		if filter.matches(ds) {
			found.add(ds)
		}
	}

	if rev != nil && len(found.order) == 0 {
		visited := map[string]bool{rev.UID: true}
		if err := d.walkDocuments(ctx, rev.UID, filter, found, visited, maxDepth); err != nil {
			return nil, err
		}
	}

	return found.order, nil
}

// walkDocuments collects wanted datasets from the document revisions related
// to uid, recursing while depth remains.
func (d *Discoverer) walkDocuments(ctx context.Context, uid string, filter typeFilter, found *datasetSet, visited map[string]bool, depth int) error {
	if depth <= 0 {
		return nil
	}

	docs, err := d.repo.Related(ctx, uid, RelationDescribedBy)
	if err != nil {
		return fmt.Errorf("relation %s of %s: %w", RelationDescribedBy, uid, err)
	}

	for _, doc := range docs {
		if visited[doc.UID] || !doc.IsRevision() {
			continue
		}
		visited[doc.UID] = true

		datasets, err := datasetsRelatedTo(ctx, d.repo, doc.UID)
		if err != nil {
			return fmt.Errorf("datasets of document %s: %w", doc.UID, err)
		}
		for _, ds := range datasets {
			if filter.matches(ds) {
				found.add(ds)
			}
		}

		d.logger.Debug("walked document revision",
			slog.String("document", doc.UID),
			slog.Int("datasets", len(datasets)),
			slog.Int("depth_left", depth-1))

		if err := d.walkDocuments(ctx, doc.UID, filter, found, visited, depth-1); err != nil {
			return err
		}
	}
	return nil
}

// typeFilter matches datasets against wanted type names, case-insensitively.
// A dataset matches when any wanted name appears in its type or its name,
// which is how the source repository distinguishes "PDF" datasets from the
// site-specific subtypes that carry them.
type typeFilter struct {
	wanted []string
}

func newTypeFilter(wanted []string) typeFilter {
	lowered := make([]string, 0, len(wanted))
	for _, w := range wanted {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			lowered = append(lowered, w)
		}
	}
	return typeFilter{wanted: lowered}
}

func (f typeFilter) matches(ds model.Dataset) bool {
	if len(f.wanted) == 0 {
		return true
	}
	dtype := strings.ToLower(ds.Type)
	dname := strings.ToLower(ds.Name)
	for _, w := range f.wanted {
		if strings.Contains(dtype, w) || strings.Contains(dname, w) {
			return true
		}
	}
	return false
}
