package plm

import (
	"context"
	"io"

	"github.com/handiism/drawing-downloader/internal/model"
)

// fakeRepo is a scriptable Repository double shared by the resolver and
// discoverer tests.
type fakeRepo struct {
	combined    map[string]*CombinedResult
	combinedErr error

	items     map[string]*model.Item
	revisions map[string]*model.Revision

	// related maps uid -> relation -> objects.
	related map[string]map[string][]model.Object

	// datasets maps uid -> full dataset.
	datasets map[string]model.Dataset

	policyCalls   int
	policyErr     error
	combinedCalls int
	findCalls     int
	relatedCalls  int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		combined:  make(map[string]*CombinedResult),
		items:     make(map[string]*model.Item),
		revisions: make(map[string]*model.Revision),
		related:   make(map[string]map[string][]model.Object),
		datasets:  make(map[string]model.Dataset),
	}
}

func (f *fakeRepo) ApplyPolicy(_ context.Context, _ PropertyPolicy) error {
	f.policyCalls++
	return f.policyErr
}

func (f *fakeRepo) GetItemAndRelated(_ context.Context, q ItemQuery) (*CombinedResult, error) {
	f.combinedCalls++
	if f.combinedErr != nil {
		return nil, f.combinedErr
	}
	res, ok := f.combined[q.Identifier]
	if !ok {
		return nil, ErrNotFound
	}
	return res, nil
}

func (f *fakeRepo) FindItem(_ context.Context, identifier string) (*model.Item, *model.Revision, error) {
	f.findCalls++
	item, ok := f.items[identifier]
	if !ok {
		return nil, nil, ErrNotFound
	}
	return item, f.revisions[identifier], nil
}

func (f *fakeRepo) Related(_ context.Context, uid, relation string) ([]model.Object, error) {
	f.relatedCalls++
	return f.related[uid][relation], nil
}

func (f *fakeRepo) Datasets(_ context.Context, uids []string) ([]model.Dataset, error) {
	var out []model.Dataset
	for _, uid := range uids {
		if ds, ok := f.datasets[uid]; ok {
			out = append(out, ds)
		}
	}
	return out, nil
}

// relate attaches objects to uid through relation.
func (f *fakeRepo) relate(uid, relation string, objs ...model.Object) {
	if f.related[uid] == nil {
		f.related[uid] = make(map[string][]model.Object)
	}
	f.related[uid][relation] = append(f.related[uid][relation], objs...)
}

// addDataset registers a dataset and returns its relation object form.
func (f *fakeRepo) addDataset(ds model.Dataset) model.Object {
	f.datasets[ds.UID] = ds
	return model.Object{UID: ds.UID, Type: ds.Type, Name: ds.Name}
}

// fakeFiles is a FileStore double; unused methods panic so resolver and
// discovery tests cannot silently depend on file retrieval.
type fakeFiles struct{}

func (fakeFiles) CachedPath(context.Context, model.FileRef) (string, error) {
	return "", ErrCacheMiss
}

func (fakeFiles) ReadTicket(context.Context, model.FileRef) (Ticket, error) {
	return "", io.ErrUnexpectedEOF
}

func (fakeFiles) Open(context.Context, Ticket) (io.ReadCloser, error) {
	return nil, io.ErrUnexpectedEOF
}
