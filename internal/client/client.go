// Package client talks to a remote vitrina server over its JSON API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/erazemk/vitrina/internal/api"
	"github.com/erazemk/vitrina/internal/model"
)

// Client implements the catalog persistence operations over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for the server at baseURL. A nil hc uses
// http.DefaultClient.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// ListItems returns all items, newest first.
func (c *Client) ListItems(ctx context.Context) ([]model.Item, error) {
	var items []model.Item
	if err := c.doJSON(ctx, "listing items", http.MethodGet, "/api/items", nil, 0, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// InsertItem stores a draft.
func (c *Client) InsertItem(ctx context.Context, d model.Draft) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, "creating item", http.MethodPost, "/api/items", d, 0, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem applies a patch.
func (c *Client) UpdateItem(ctx context.Context, id int64, p model.Patch) (*model.Item, error) {
	var item model.Item
	if err := c.doJSON(ctx, "updating item", http.MethodPatch, itemPath(id), p, id, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteItem removes an item.
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	return c.doJSON(ctx, "deleting item", http.MethodDelete, itemPath(id), nil, id, nil)
}

// UploadObject stores an image under name and returns its public URL. Every
// failure is a *model.PersistenceError; a rejected upload also unwraps to
// the server's *model.ValidationError.
func (c *Client) UploadObject(ctx context.Context, data []byte, name string) (string, error) {
	const op = "uploading object"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/api/objects/"+url.PathEscape(name), bytes.NewReader(data))
	if err != nil {
		return "", &model.PersistenceError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	var resp api.UploadResponse
	if err := c.do(req, op, 0, &resp); err != nil {
		return "", asPersistence(op, err)
	}
	return resp.URL, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, in any, id int64, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &model.PersistenceError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &model.PersistenceError{Op: op, Err: err}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, op, id, out)
}

func (c *Client) do(req *http.Request, op string, id int64, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return &model.PersistenceError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp, op, id)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &model.PersistenceError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// decodeError turns an error response back into the error the server raised.
func decodeError(resp *http.Response, op string, id int64) error {
	var body api.ErrorBody
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err != nil || body.Error == "" {
		body.Error = strings.TrimSpace(string(data))
	}

	switch resp.StatusCode {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge:
		return &model.ValidationError{Field: body.Field, Message: body.Error}
	case http.StatusNotFound:
		if id != 0 {
			return &model.NotFoundError{ID: id}
		}
	}
	return &model.PersistenceError{Op: op, Err: fmt.Errorf("server returned %s: %s", resp.Status, body.Error)}
}

func itemPath(id int64) string {
	return "/api/items/" + strconv.FormatInt(id, 10)
}

// asPersistence wraps err in a *model.PersistenceError unless it is one.
func asPersistence(op string, err error) error {
	var perr *model.PersistenceError
	if errors.As(err, &perr) {
		return err
	}
	return &model.PersistenceError{Op: op, Err: err}
}
