package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/erazemk/vitrina/internal/model"
)

// AllowedMIME lists the accepted object MIME types.
var AllowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

var validObjectName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,199}$`)

// DetectImageMIME sniffs the MIME type from the bytes, not trusting client
// headers, and rejects anything that is not an accepted image.
func DetectImageMIME(data []byte) (string, error) {
	detected := http.DetectContentType(data)
	if !AllowedMIME[detected] {
		return "", &model.ValidationError{Field: "object", Message: fmt.Sprintf("unsupported object type %s", detected)}
	}
	return detected, nil
}

// ValidateObjectName checks that name is safe to use as a URL path segment.
func ValidateObjectName(name string) error {
	if !validObjectName.MatchString(name) {
		return &model.ValidationError{Field: "name", Message: fmt.Sprintf("invalid object name %q", name)}
	}
	return nil
}

// PutObject stores data under name. An existing object with the same name
// is replaced.
func PutObject(ctx context.Context, db *sql.DB, name string, data []byte, mime string) error {
	if err := ValidateObjectName(name); err != nil {
		return err
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO objects (name, data, mime, size) VALUES (?, ?, ?, ?)
		 ON CONFLICT (name) DO UPDATE SET data = excluded.data, mime = excluded.mime,
		     size = excluded.size, created_at = CURRENT_TIMESTAMP`,
		name, data, mime, len(data),
	)
	if err != nil {
		return &model.PersistenceError{Op: "storing object", Err: err}
	}
	return nil
}

// GetObject returns an object's data and MIME type. Data is nil if there is
// no such object.
func GetObject(ctx context.Context, db *sql.DB, name string) ([]byte, string, error) {
	var data []byte
	var mime string
	err := db.QueryRowContext(ctx,
		`SELECT data, mime FROM objects WHERE name = ?`, name,
	).Scan(&data, &mime)
	if err == sql.ErrNoRows {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", &model.PersistenceError{Op: "getting object", Err: err}
	}
	return data, mime, nil
}

// ObjectURL returns the public URL of an object.
func ObjectURL(baseURL, name string) string {
	return strings.TrimRight(baseURL, "/") + "/objects/" + url.PathEscape(name)
}
