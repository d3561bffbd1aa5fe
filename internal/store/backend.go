package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/erazemk/vitrina/internal/model"
)

// Backend serves the catalog persistence operations straight from a local
// database. PublicURL is the address the objects are served from.
type Backend struct {
	DB        *sql.DB
	PublicURL string
}

// ListItems returns all items, newest first.
func (b *Backend) ListItems(ctx context.Context) ([]model.Item, error) {
	return ListItems(ctx, b.DB)
}

// InsertItem stores a draft.
func (b *Backend) InsertItem(ctx context.Context, d model.Draft) (*model.Item, error) {
	return InsertItem(ctx, b.DB, d)
}

// UpdateItem applies a patch.
func (b *Backend) UpdateItem(ctx context.Context, id int64, p model.Patch) (*model.Item, error) {
	return UpdateItem(ctx, b.DB, id, p)
}

// DeleteItem removes an item.
func (b *Backend) DeleteItem(ctx context.Context, id int64) error {
	return DeleteItem(ctx, b.DB, id)
}

// UploadObject stores an image and returns its public URL. Every failure
// is a *model.PersistenceError; a rejected image also unwraps to a
// *model.ValidationError.
func (b *Backend) UploadObject(ctx context.Context, data []byte, name string) (string, error) {
	const op = "uploading object"
	mime, err := DetectImageMIME(data)
	if err != nil {
		return "", &model.PersistenceError{Op: op, Err: err}
	}
	if err := PutObject(ctx, b.DB, name, data, mime); err != nil {
		var perr *model.PersistenceError
		if errors.As(err, &perr) {
			return "", err
		}
		return "", &model.PersistenceError{Op: op, Err: err}
	}
	return ObjectURL(b.PublicURL, name), nil
}
