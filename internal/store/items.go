package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/erazemk/vitrina/internal/model"
)

const itemColumns = `id, name, price, description, category, state, image_url, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	item := &model.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Price, &item.Description, &item.Category,
		&item.State, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// InsertItem validates and stores a draft, returning the stored row.
func InsertItem(ctx context.Context, db *sql.DB, d model.Draft) (*model.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, price, description, category, state, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.Price, d.Description, d.Category, d.State, d.ImageURL,
	)
	if err != nil {
		return nil, &model.PersistenceError{Op: "creating item", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, &model.PersistenceError{Op: "getting item id", Err: err}
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.PersistenceError{Op: "creating item", Err: errors.New("row vanished after insert")}
	}
	return item, nil
}

// GetItem returns an item by ID, or nil if there is none.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, &model.PersistenceError{Op: "getting item", Err: err}
	}
	return item, nil
}

// ListItems returns all items, newest first.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, &model.PersistenceError{Op: "listing items", Err: err}
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, &model.PersistenceError{Op: "scanning item", Err: err}
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, &model.PersistenceError{Op: "listing items", Err: err}
	}
	return items, nil
}

// UpdateItem writes the fields set in the patch and returns the updated row.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, p model.Patch) (*model.Item, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if !p.Empty() {
		var sets []string
		var args []any
		set := func(column string, value any) {
			sets = append(sets, column+" = ?")
			args = append(args, value)
		}
		if p.Name != nil {
			set("name", *p.Name)
		}
		if p.Price != nil {
			set("price", *p.Price)
		}
		if p.Description != nil {
			set("description", *p.Description)
		}
		if p.Category != nil {
			set("category", *p.Category)
		}
		if p.State != nil {
			set("state", *p.State)
		}
		if p.ImageURL != nil {
			set("image_url", *p.ImageURL)
		}
		args = append(args, id)

		result, err := db.ExecContext(ctx,
			`UPDATE items SET `+strings.Join(sets, ", ")+`, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			args...,
		)
		if err != nil {
			return nil, &model.PersistenceError{Op: "updating item", Err: err}
		}
		n, err := result.RowsAffected()
		if err != nil {
			return nil, &model.PersistenceError{Op: "updating item", Err: err}
		}
		if n == 0 {
			return nil, &model.NotFoundError{ID: id}
		}
	}

	item, err := GetItem(ctx, db, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, &model.NotFoundError{ID: id}
	}
	return item, nil
}

// DeleteItem removes an item.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return &model.PersistenceError{Op: "deleting item", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return &model.PersistenceError{Op: "deleting item", Err: err}
	}
	if n == 0 {
		return &model.NotFoundError{ID: id}
	}
	return nil
}
