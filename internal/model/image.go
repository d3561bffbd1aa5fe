package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ImageURL is an optional reference to an uploaded image.
type ImageURL struct {
	url string
	ok  bool
}

// SomeImage returns an ImageURL holding url.
func SomeImage(url string) ImageURL {
	return ImageURL{url: url, ok: true}
}

// NoImage returns an absent ImageURL.
func NoImage() ImageURL {
	return ImageURL{}
}

// Get returns the URL and whether one is present.
func (u ImageURL) Get() (string, bool) {
	return u.url, u.ok
}

// IsSet reports whether an image is attached.
func (u ImageURL) IsSet() bool {
	return u.ok
}

// String returns the URL, or "" when absent.
func (u ImageURL) String() string {
	return u.url
}

// MarshalJSON encodes an absent image as null.
func (u ImageURL) MarshalJSON() ([]byte, error) {
	if !u.ok {
		return []byte("null"), nil
	}
	return json.Marshal(u.url)
}

// UnmarshalJSON accepts null or a string.
func (u *ImageURL) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*u = NoImage()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decoding image url: %w", err)
	}
	if s == "" {
		*u = NoImage()
		return nil
	}
	*u = SomeImage(s)
	return nil
}

// Scan implements sql.Scanner.
func (u *ImageURL) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = NoImage()
	case string:
		*u = SomeImage(v)
	case []byte:
		*u = SomeImage(string(v))
	default:
		return fmt.Errorf("scanning image url: unsupported type %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (u ImageURL) Value() (driver.Value, error) {
	if !u.ok {
		return nil, nil
	}
	return u.url, nil
}
