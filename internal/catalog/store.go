// Package catalog owns the in-memory item collection and keeps it in step
// with the persistence service.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/erazemk/vitrina/internal/model"
	"github.com/erazemk/vitrina/internal/selection"
)

// Group is the set of items sharing a category, in collection order.
type Group struct {
	Category string
	Items    []model.Item
}

// Store is the single owner of the item collection. Every mutation goes
// through a persistence call first; local state only ever reflects
// authoritative rows.
type Store struct {
	backend Items
	sel     *selection.Set
	timeout time.Duration

	mu      sync.Mutex
	items   []model.Item
	version uint64

	groups        []Group
	groupsVersion uint64
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout bounds every persistence call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New returns an empty store backed by items. Deleted items are also
// removed from sel.
func New(items Items, sel *selection.Set, opts ...Option) *Store {
	if sel == nil {
		sel = selection.New()
	}
	s := &Store{backend: items, sel: sel}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Selection returns the selection set the store keeps consistent on delete.
func (s *Store) Selection() *selection.Set {
	return s.sel
}

func (s *Store) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return ctx, func() {}
}

// Load replaces the collection with the service's list. On failure the
// collection is left as it was.
func (s *Store) Load(ctx context.Context) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	items, err := s.backend.ListItems(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.items = slices.Clone(items)
	s.version++
	s.mu.Unlock()

	slog.Debug("catalog loaded", "items", len(items))
	return nil
}

// Create validates and persists a draft, then prepends the returned row.
func (s *Store) Create(ctx context.Context, draft model.Draft) (*model.Item, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	item, err := s.backend.InsertItem(ctx, draft)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.items = slices.Insert(s.items, 0, *item)
	s.version++
	s.mu.Unlock()

	slog.Info("item created", "item", item.ID, "name", item.Name)
	out := *item
	return &out, nil
}

// Update persists the set fields of patch and replaces the local copy with
// the returned row.
func (s *Store) Update(ctx context.Context, id int64, patch model.Patch) (*model.Item, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := s.callContext(ctx)
	defer cancel()

	item, err := s.backend.UpdateItem(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items[i] = *item
		s.version++
	}
	s.mu.Unlock()

	slog.Info("item updated", "item", id)
	out := *item
	return &out, nil
}

// Delete removes an item from the service, the collection and the
// selection. Callers confirm with the user before calling it.
func (s *Store) Delete(ctx context.Context, id int64) error {
	ctx, cancel := s.callContext(ctx)
	defer cancel()

	if err := s.backend.DeleteItem(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	if i := s.indexOf(id); i >= 0 {
		s.items = slices.Delete(s.items, i, i+1)
		s.version++
	}
	s.sel.Remove(id)
	s.mu.Unlock()

	slog.Info("item deleted", "item", id)
	return nil
}

// Items returns a copy of the collection, newest first.
func (s *Store) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Item returns the item with the given id.
func (s *Store) Item(id int64) (model.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	return model.Item{}, false
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Version increases every time the collection changes.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// GroupedByCategory partitions the collection by category. Groups appear in
// the order their first item appears; items keep their relative order.
func (s *Store) GroupedByCategory() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groups == nil || s.groupsVersion != s.version {
		s.groups = group(s.items)
		s.groupsVersion = s.version
	}
	return cloneGroups(s.groups)
}

// SelectionTotal sums the prices of selected items that are still in the
// collection. Ids without an item contribute nothing.
func (s *Store) SelectionTotal(sel *selection.Set) decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.SelectedItems(sel) {
		total = total.Add(item.Price)
	}
	return total
}

// SelectedItems returns the selected items present in the collection, in
// collection order.
func (s *Store) SelectedItems(sel *selection.Set) []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Item
	for _, item := range s.items {
		if sel.Has(item.ID) {
			out = append(out, item)
		}
	}
	return out
}

// indexOf must be called with mu held.
func (s *Store) indexOf(id int64) int {
	return slices.IndexFunc(s.items, func(it model.Item) bool { return it.ID == id })
}

func group(items []model.Item) []Group {
	groups := []Group{}
	index := map[string]int{}
	for _, item := range items {
		i, ok := index[item.Category]
		if !ok {
			i = len(groups)
			index[item.Category] = i
			groups = append(groups, Group{Category: item.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

func cloneGroups(groups []Group) []Group {
	out := make([]Group, len(groups))
	for i, g := range groups {
		out[i] = Group{Category: g.Category, Items: slices.Clone(g.Items)}
	}
	return out
}
