package plm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/handiism/drawing-downloader/internal/model"
)

// Resolution is the outcome of resolving one item identifier: the item, its
// latest revision, and any datasets the combined call returned along the way.
type Resolution struct {
	Item     *model.Item
	Revision *model.Revision

	// Datasets are the directly related datasets picked up opportunistically
	// during resolution. Discovery may find more; it seeds from these.
	Datasets []model.Dataset
}

// Resolver maps an item identifier to its item, latest revision, and initial
// datasets using a two-tier retrieval strategy.
type Resolver struct {
	repo   Repository
	rule   string
	logger *slog.Logger
}

// NewResolver creates a Resolver querying through repo.
//
// rule is the server-side revision rule selecting the latest revision; an
// empty rule lets the server apply its default.
func NewResolver(repo Repository, rule string, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{repo: repo, rule: rule, logger: logger}
}

// Resolve resolves identifier to a Resolution, or ErrNotFound when the
// repository holds no matching item.
//
// Tier 1 is a single combined call returning item, latest revision, and
// related datasets in one round trip. Some object configurations make the
// server silently skip the related-object traversal; the response flags
// that, and Resolve then falls back to tier 2: an attribute lookup followed
// by a direct relation fetch on the revision. The fallback trigger is the
// flag plus a missing revision, never a blind retry on error.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (*Resolution, error) {
	combined, err := r.repo.GetItemAndRelated(ctx, ItemQuery{
		Identifier:   identifier,
		RevisionRule: r.rule,
	})
	switch {
	case errors.Is(err, ErrNotFound):
		return nil, ErrNotFound
	case err != nil:
		// The combined call can fail for object configurations the
		// per-step path still handles, so keep going.
		r.logger.Warn("combined retrieval failed, using per-step fallback",
			slog.String("item", identifier), slog.String("error", err.Error()))
	case combined.Revision != nil && combined.RelatedTraversed:
		return &Resolution{
			Item:     combined.Item,
			Revision: combined.Revision,
			Datasets: combined.Datasets,
		}, nil
	default:
		r.logger.Debug("combined retrieval incomplete, using per-step fallback",
			slog.String("item", identifier),
			slog.Bool("related_traversed", combined.RelatedTraversed))
	}

	return r.resolveStepwise(ctx, identifier)
}

// resolveStepwise is the slower tier: item by attribute, then the revision's
// direct dataset relations one call at a time.
func (r *Resolver) resolveStepwise(ctx context.Context, identifier string) (*Resolution, error) {
	item, rev, err := r.repo.FindItem(ctx, identifier)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find item %q: %w", identifier, err)
	}
	if rev == nil {
		// An item with no revision has nothing downloadable attached.
		return &Resolution{Item: item}, nil
	}

	datasets, err := datasetsRelatedTo(ctx, r.repo, rev.UID)
	if err != nil {
		return nil, fmt.Errorf("relations of %q revision %s: %w", identifier, rev.RevisionID, err)
	}

	return &Resolution{Item: item, Revision: rev, Datasets: datasets}, nil
}

// datasetsRelatedTo walks the dataset relations of one object and
// materializes every dataset found, deduplicated by uid.
func datasetsRelatedTo(ctx context.Context, repo Repository, uid string) ([]model.Dataset, error) {
	seen := make(map[string]bool)
	var uids []string
	for _, relation := range DatasetRelations {
		objs, err := repo.Related(ctx, uid, relation)
		if err != nil {
			return nil, fmt.Errorf("relation %s: %w", relation, err)
		}
		for _, obj := range objs {
			if obj.IsRevision() || seen[obj.UID] {
				continue
			}
			seen[obj.UID] = true
			uids = append(uids, obj.UID)
		}
	}
	if len(uids) == 0 {
		return nil, nil
	}
	return repo.Datasets(ctx, uids)
}
