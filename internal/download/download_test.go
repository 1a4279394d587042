package download

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/handiism/drawing-downloader/internal/model"
	"github.com/handiism/drawing-downloader/internal/plm"
)

// fakeRepo is a scriptable plm.Repository double for orchestrator tests.
type fakeRepo struct {
	combined map[string]*plm.CombinedResult

	items     map[string]*model.Item
	revisions map[string]*model.Revision
	related   map[string]map[string][]model.Object
	datasets  map[string]model.Dataset

	policyErr   error
	policyCalls int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		combined:  make(map[string]*plm.CombinedResult),
		items:     make(map[string]*model.Item),
		revisions: make(map[string]*model.Revision),
		related:   make(map[string]map[string][]model.Object),
		datasets:  make(map[string]model.Dataset),
	}
}

func (f *fakeRepo) ApplyPolicy(_ context.Context, _ plm.PropertyPolicy) error {
	f.policyCalls++
	return f.policyErr
}

func (f *fakeRepo) GetItemAndRelated(_ context.Context, q plm.ItemQuery) (*plm.CombinedResult, error) {
	res, ok := f.combined[q.Identifier]
	if !ok {
		return nil, plm.ErrNotFound
	}
	return res, nil
}

func (f *fakeRepo) FindItem(_ context.Context, identifier string) (*model.Item, *model.Revision, error) {
	item, ok := f.items[identifier]
	if !ok {
		return nil, nil, plm.ErrNotFound
	}
	return item, f.revisions[identifier], nil
}

func (f *fakeRepo) Related(_ context.Context, uid, relation string) ([]model.Object, error) {
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

func (f *fakeRepo) relate(uid, relation string, objs ...model.Object) {
	if f.related[uid] == nil {
		f.related[uid] = make(map[string][]model.Object)
	}
	f.related[uid][relation] = append(f.related[uid][relation], objs...)
}

func (f *fakeRepo) addDataset(ds model.Dataset) model.Object {
	f.datasets[ds.UID] = ds
	return model.Object{UID: ds.UID, Type: ds.Type, Name: ds.Name}
}

// fakeFiles is a scriptable plm.FileStore double that counts ticket
// requests, so tests can assert the cache-first contract.
type fakeFiles struct {
	// cache maps file uid -> staged local path.
	cache map[string]string

	// content maps file uid -> bytes served by the ticket stream.
	content map[string][]byte

	ticketErr error
	streamErr error

	ticketCalls int
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{
		cache:   make(map[string]string),
		content: make(map[string][]byte),
	}
}

func (f *fakeFiles) CachedPath(_ context.Context, file model.FileRef) (string, error) {
	path, ok := f.cache[file.UID]
	if !ok {
		return "", plm.ErrCacheMiss
	}
	return path, nil
}

func (f *fakeFiles) ReadTicket(_ context.Context, file model.FileRef) (plm.Ticket, error) {
	f.ticketCalls++
	if f.ticketErr != nil {
		return "", f.ticketErr
	}
	if _, ok := f.content[file.UID]; !ok {
		return "", errors.New("no ticket available")
	}
	return plm.Ticket("ticket-" + file.UID), nil
}

func (f *fakeFiles) Open(_ context.Context, ticket plm.Ticket) (io.ReadCloser, error) {
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	uid := strings.TrimPrefix(string(ticket), "ticket-")
	data, ok := f.content[uid]
	if !ok {
		return nil, errors.New("unknown ticket")
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}
