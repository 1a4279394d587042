package plm

import (
	"context"
	"errors"
	"io"

	"github.com/handiism/drawing-downloader/internal/model"
)

// ErrNotFound is returned when an item identifier does not resolve to any
// item in the remote repository. It is a normal outcome, not a failure; the
// orchestrator records it and moves on.
var ErrNotFound = errors.New("item not found")

// ErrCacheMiss is returned by FileStore.CachedPath when the local file cache
// holds no staged copy for the requested file reference.
var ErrCacheMiss = errors.New("file not in local cache")

// Relation names used by discovery. These mirror the relation types the
// source repository attaches drawings through.
const (
	// RelationDescribedBy links an item revision to the document revisions
	// that describe it. Drawings are frequently modeled as separate document
	// objects linked through this relation rather than stored on the
	// engineering revision itself.
	RelationDescribedBy = "Fnd0IsDescribedByDocument"

	// RelationSpecification and friends attach datasets directly to a
	// revision.
	RelationSpecification = "IMAN_specification"
	RelationReference     = "IMAN_reference"
	RelationManifestation = "IMAN_manifestation"
	RelationRendering     = "IMAN_Rendering"
	RelationAttaches      = "TC_Attaches"
)

// DatasetRelations are the named relations walked when collecting datasets
// attached to a revision.
var DatasetRelations = []string{
	RelationSpecification,
	RelationReference,
	RelationManifestation,
	RelationRendering,
	RelationAttaches,
}

// ItemQuery describes one combined item retrieval.
type ItemQuery struct {
	// Identifier is the item identifier (part number) to resolve.
	Identifier string

	// RevisionRule is the server-side rule name that selects the latest
	// revision, e.g. "Latest Released". The server applies the rule; the
	// client never orders revisions itself.
	RevisionRule string
}

// CombinedResult is the response of the combined retrieval: the item, its
// latest revision, and the directly related datasets, in one round trip.
type CombinedResult struct {
	Item     *model.Item
	Revision *model.Revision

	// Datasets holds the datasets the server returned alongside the
	// revision. Only meaningful when RelatedTraversed is true.
	Datasets []model.Dataset

	// RelatedTraversed reports whether the server honored the related-object
	// part of the query. Some object configurations silently skip it; the
	// server flags that here so the caller can fall back to per-step
	// queries instead of trusting an empty Datasets slice.
	RelatedTraversed bool
}

// Repository is the read-only query surface of the remote repository,
// exposed by an already authenticated session collaborator.
//
// All calls are blocking I/O and honor context cancellation. None of them
// mutate remote state.
type Repository interface {
	// ApplyPolicy installs a property-prefetch policy for the remainder of
	// the session. A malformed policy is rejected with an error.
	ApplyPolicy(ctx context.Context, policy PropertyPolicy) error

	// GetItemAndRelated performs the combined retrieval for one identifier.
	// Returns ErrNotFound when no item matches.
	GetItemAndRelated(ctx context.Context, q ItemQuery) (*CombinedResult, error)

	// FindItem looks an item up by its item_id attribute and returns the
	// item together with its latest revision. Returns ErrNotFound when no
	// item matches.
	FindItem(ctx context.Context, identifier string) (*model.Item, *model.Revision, error)

	// Related returns the objects related to uid through the named relation.
	Related(ctx context.Context, uid, relation string) ([]model.Object, error)

	// Datasets materializes full dataset objects, including their file
	// references, for the given uids.
	Datasets(ctx context.Context, uids []string) ([]model.Dataset, error)
}

// Ticket is a short-lived authorization token permitting a single file
// transfer from the remote file store.
type Ticket string

// FileStore is the file-retrieval surface of the remote file-management
// service. The local cache is read-only from the downloader's perspective.
type FileStore interface {
	// CachedPath returns the local path of a file already staged in the
	// file-management cache, or ErrCacheMiss.
	CachedPath(ctx context.Context, file model.FileRef) (string, error)

	// ReadTicket requests a transfer ticket for the file.
	ReadTicket(ctx context.Context, file model.FileRef) (Ticket, error)

	// Open starts the ticketed transfer and returns the file content stream.
	Open(ctx context.Context, ticket Ticket) (io.ReadCloser, error)
}

// Session bundles one authenticated Repository/FileStore pair.
//
// A Session must not be shared across concurrently running pipelines; the
// underlying service binding is not safe for concurrent independent calls
// in all deployments. Use one Session per worker instead.
type Session struct {
	Repo  Repository
	Files FileStore

	appliedPolicy string
}

// NewSession wraps an authenticated repository and file-store pair.
func NewSession(repo Repository, files FileStore) *Session {
	return &Session{Repo: repo, Files: files}
}

// ApplyPolicy installs the property-prefetch policy on the session.
//
// Applying the same policy twice is a no-op. A rejected policy is a fatal
// configuration error and propagates to the caller unretried.
func (s *Session) ApplyPolicy(ctx context.Context, policy PropertyPolicy) error {
	fp := policy.fingerprint()
	if s.appliedPolicy == fp {
		return nil
	}
	if err := s.Repo.ApplyPolicy(ctx, policy); err != nil {
		return err
	}
	s.appliedPolicy = fp
	return nil
}
