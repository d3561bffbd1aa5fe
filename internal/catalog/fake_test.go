package catalog

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/erazemk/vitrina/internal/model"
)

var errBackend = errors.New("backend unavailable")

// fakeBackend is an in-memory persistence service. Setting fail makes the
// named operation return that error.
type fakeBackend struct {
	items  []model.Item // newest first
	nextID int64
	now    time.Time
	fail   map[string]error
	calls  []string
}

func newFakeBackend(items ...model.Item) *fakeBackend {
	f := &fakeBackend{
		nextID: 100,
		now:    time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		fail:   map[string]error{},
	}
	f.items = append(f.items, items...)
	return f
}

func (f *fakeBackend) call(op string) error {
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeBackend) ListItems(ctx context.Context) ([]model.Item, error) {
	if err := f.call("list"); err != nil {
		return nil, err
	}
	return slices.Clone(f.items), nil
}

func (f *fakeBackend) InsertItem(ctx context.Context, d model.Draft) (*model.Item, error) {
	if err := f.call("insert"); err != nil {
		return nil, err
	}
	f.nextID++
	f.now = f.now.Add(time.Minute)
	item := model.Item{
		ID:          f.nextID,
		Name:        d.Name,
		Price:       d.Price,
		Description: d.Description,
		Category:    d.Category,
		State:       d.State,
		ImageURL:    d.ImageURL,
		CreatedAt:   f.now,
		UpdatedAt:   f.now,
	}
	f.items = slices.Insert(f.items, 0, item)
	return &item, nil
}

func (f *fakeBackend) UpdateItem(ctx context.Context, id int64, p model.Patch) (*model.Item, error) {
	if err := f.call("update"); err != nil {
		return nil, err
	}
	i := slices.IndexFunc(f.items, func(it model.Item) bool { return it.ID == id })
	if i < 0 {
		return nil, &model.NotFoundError{ID: id}
	}
	f.now = f.now.Add(time.Minute)
	item := p.Apply(f.items[i])
	item.UpdatedAt = f.now
	f.items[i] = item
	return &item, nil
}

func (f *fakeBackend) DeleteItem(ctx context.Context, id int64) error {
	if err := f.call("delete"); err != nil {
		return err
	}
	i := slices.IndexFunc(f.items, func(it model.Item) bool { return it.ID == id })
	if i < 0 {
		return &model.NotFoundError{ID: id}
	}
	f.items = slices.Delete(f.items, i, i+1)
	return nil
}

func (f *fakeBackend) UploadObject(ctx context.Context, data []byte, name string) (string, error) {
	if err := f.call("upload"); err != nil {
		return "", err
	}
	return "http://objects.test/" + name, nil
}
