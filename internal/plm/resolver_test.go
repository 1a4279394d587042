package plm

import (
	"context"
	"errors"
	"testing"

	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCombined(t *testing.T) {
	repo := newFakeRepo()
	repo.combined["12345"] = &CombinedResult{
		Item:     &model.Item{UID: "i1", ItemID: "12345", Name: "Bracket"},
		Revision: &model.Revision{UID: "r1", RevisionID: "A"},
		Datasets: []model.Dataset{
			{UID: "d1", Name: "DWG_PDF", Type: "PDF", Files: []model.FileRef{{UID: "f1", Name: "12345.pdf"}}},
		},
		RelatedTraversed: true,
	}

	res, err := NewResolver(repo, "Latest Released", nil).Resolve(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, "12345", res.Item.ItemID)
	assert.Equal(t, "A", res.Revision.RevisionID)
	require.Len(t, res.Datasets, 1)
	assert.Equal(t, "DWG_PDF", res.Datasets[0].Name)

	// The efficient path alone must suffice.
	assert.Equal(t, 1, repo.combinedCalls)
	assert.Equal(t, 0, repo.findCalls)
	assert.Equal(t, 0, repo.relatedCalls)
}

func TestResolveFallsBackWhenRelatedNotTraversed(t *testing.T) {
	repo := newFakeRepo()
	// The server returned the revision but skipped the related-object
	// traversal, a documented limitation for some object configurations.
	repo.combined["12345"] = &CombinedResult{
		Item:             &model.Item{UID: "i1", ItemID: "12345"},
		Revision:         &model.Revision{UID: "r1", RevisionID: "A"},
		RelatedTraversed: false,
	}
	repo.items["12345"] = &model.Item{UID: "i1", ItemID: "12345"}
	repo.revisions["12345"] = &model.Revision{UID: "r1", RevisionID: "A"}
	repo.relate("r1", RelationSpecification,
		repo.addDataset(model.Dataset{UID: "d1", Name: "DWG_PDF", Type: "PDF"}))

	res, err := NewResolver(repo, "", nil).Resolve(context.Background(), "12345")
	require.NoError(t, err)

	assert.Equal(t, 1, repo.findCalls)
	require.Len(t, res.Datasets, 1)
	assert.Equal(t, "d1", res.Datasets[0].UID)
}

func TestResolveFallsBackWhenRevisionMissing(t *testing.T) {
	repo := newFakeRepo()
	repo.combined["12345"] = &CombinedResult{
		Item:             &model.Item{UID: "i1", ItemID: "12345"},
		RelatedTraversed: true,
	}
	repo.items["12345"] = &model.Item{UID: "i1", ItemID: "12345"}
	repo.revisions["12345"] = &model.Revision{UID: "r1", RevisionID: "B"}

	res, err := NewResolver(repo, "", nil).Resolve(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "B", res.Revision.RevisionID)
}

func TestResolveFallsBackOnCombinedError(t *testing.T) {
	repo := newFakeRepo()
	repo.combinedErr = errors.New("internal server error")
	repo.items["12345"] = &model.Item{UID: "i1", ItemID: "12345"}
	repo.revisions["12345"] = &model.Revision{UID: "r1", RevisionID: "A"}

	res, err := NewResolver(repo, "", nil).Resolve(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "i1", res.Item.UID)
}

func TestResolveNotFound(t *testing.T) {
	repo := newFakeRepo()

	_, err := NewResolver(repo, "", nil).Resolve(context.Background(), "99999")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveItemWithoutRevision(t *testing.T) {
	repo := newFakeRepo()
	repo.combined["77777"] = &CombinedResult{
		Item:             &model.Item{UID: "i7", ItemID: "77777"},
		RelatedTraversed: false,
	}
	repo.items["77777"] = &model.Item{UID: "i7", ItemID: "77777"}

	res, err := NewResolver(repo, "", nil).Resolve(context.Background(), "77777")
	require.NoError(t, err)
	assert.Nil(t, res.Revision)
	assert.Empty(t, res.Datasets)
}

func TestDatasetsRelatedToDeduplicates(t *testing.T) {
	repo := newFakeRepo()
	ds := repo.addDataset(model.Dataset{UID: "d1", Name: "DWG_PDF", Type: "PDF"})
	// Same dataset reachable through two relations.
	repo.relate("r1", RelationSpecification, ds)
	repo.relate("r1", RelationReference, ds)

	datasets, err := datasetsRelatedTo(context.Background(), repo, "r1")
	require.NoError(t, err)
	assert.Len(t, datasets, 1)
}
