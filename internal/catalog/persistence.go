package catalog

import (
	"context"

	"github.com/erazemk/vitrina/internal/model"
)

// Items is the row-level half of the persistence service.
type Items interface {
	// ListItems returns every item, newest first.
	ListItems(ctx context.Context) ([]model.Item, error)
	// InsertItem stores a draft and returns the authoritative row.
	InsertItem(ctx context.Context, draft model.Draft) (*model.Item, error)
	// UpdateItem writes the set fields of patch and returns the row.
	UpdateItem(ctx context.Context, id int64, patch model.Patch) (*model.Item, error)
	// DeleteItem removes an item.
	DeleteItem(ctx context.Context, id int64) error
}

// Objects is the binary storage half of the persistence service.
type Objects interface {
	// UploadObject stores data under name and returns its public URL.
	// Existing objects with the same name are overwritten.
	UploadObject(ctx context.Context, data []byte, name string) (string, error)
}

// Persistence is the full persistence service.
type Persistence interface {
	Items
	Objects
}
