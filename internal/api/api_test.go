package api

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/erazemk/vitrina/internal/db"
	"github.com/erazemk/vitrina/internal/model"
	"github.com/erazemk/vitrina/internal/store"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(NewRouter(database, "http://vitrina.test"))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func testDraft(name string) map[string]any {
	return map[string]any{
		"name":        name,
		"price":       "15.50",
		"description": "Em bom estado",
		"category":    "Casa",
		"state":       "to_sell",
	}
}

func TestItemsCRUD(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "POST", server.URL+"/api/items", testDraft("Luminária"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	var created model.Item
	json.NewDecoder(resp.Body).Decode(&created)
	if created.ID == 0 || created.Name != "Luminária" {
		t.Fatalf("unexpected created item %+v", created)
	}
	if !created.Price.Equal(decimal.RequireFromString("15.5")) {
		t.Errorf("expected price 15.5, got %s", created.Price)
	}

	resp = doRequest(t, "PATCH", server.URL+"/api/items/"+itoa(created.ID), map[string]any{"state": "to_donate"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var updated model.Item
	json.NewDecoder(resp.Body).Decode(&updated)
	if updated.State != model.StateToDonate || updated.Name != "Luminária" {
		t.Errorf("unexpected updated item %+v", updated)
	}

	resp = doRequest(t, "GET", server.URL+"/api/items", nil)
	var items []model.Item
	json.NewDecoder(resp.Body).Decode(&items)
	if len(items) != 1 || items[0].State != model.StateToDonate {
		t.Errorf("unexpected list %+v", items)
	}

	resp = doRequest(t, "DELETE", server.URL+"/api/items/"+itoa(created.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "DELETE", server.URL+"/api/items/"+itoa(created.ID), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestListEmptyIsArray(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "GET", server.URL+"/api/items", nil)
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("expected empty JSON array, got %q", buf.String())
	}
}

func TestCreateValidationError(t *testing.T) {
	server := setupTestServer(t)

	d := testDraft("")
	resp := doRequest(t, "POST", server.URL+"/api/items", d)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body ErrorBody
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Field != "name" {
		t.Errorf("expected field 'name', got %+v", body)
	}

	resp = doRequest(t, "POST", server.URL+"/api/items", map[string]any{"state": "sold"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown state, got %d", resp.StatusCode)
	}
}

func TestUpdateErrors(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "PATCH", server.URL+"/api/items/abc", map[string]any{"name": "x"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "PATCH", server.URL+"/api/items/42", map[string]any{"name": "x"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing item, got %d", resp.StatusCode)
	}
}

func TestObjectUploadAndServe(t *testing.T) {
	server := setupTestServer(t)

	var img bytes.Buffer
	png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2)))

	req, _ := http.NewRequest("PUT", server.URL+"/api/objects/1-a.png", bytes.NewReader(img.Bytes()))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var up UploadResponse
	json.NewDecoder(resp.Body).Decode(&up)
	if up.URL != "http://vitrina.test/objects/1-a.png" {
		t.Errorf("unexpected url %q", up.URL)
	}

	get := doRequest(t, "GET", server.URL+"/objects/1-a.png", nil)
	if get.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", get.StatusCode)
	}
	if get.Header.Get("Content-Type") != "image/png" {
		t.Errorf("expected image/png, got %q", get.Header.Get("Content-Type"))
	}
	etag := get.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected an ETag")
	}

	req, _ = http.NewRequest("GET", server.URL+"/objects/1-a.png", nil)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("conditional get: %v", err)
	}
	cached.Body.Close()
	if cached.StatusCode != http.StatusNotModified {
		t.Errorf("expected 304, got %d", cached.StatusCode)
	}

	missing := doRequest(t, "GET", server.URL+"/objects/none.png", nil)
	if missing.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", missing.StatusCode)
	}
}

func TestObjectUploadRejects(t *testing.T) {
	server := setupTestServer(t)

	put := func(name string, body []byte) int {
		req, _ := http.NewRequest("PUT", server.URL+"/api/objects/"+name, bytes.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("upload: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	if status := put("a.txt", []byte("not an image at all")); status != http.StatusBadRequest {
		t.Errorf("expected 400 for non-image, got %d", status)
	}
	if status := put(".hidden", []byte("x")); status != http.StatusBadRequest {
		t.Errorf("expected 400 for bad name, got %d", status)
	}
}

func TestObjectUploadTooLarge(t *testing.T) {
	h := &ObjectsHandler{DB: db.NewTestDB(t)}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/objects/{name}", h.Upload)

	rec := httptest.NewRecorder()
	body := bytes.NewReader(make([]byte, MaxObjectSize+1))
	mux.ServeHTTP(rec, httptest.NewRequest("PUT", "/api/objects/big.jpg", body))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", rec.Code)
	}
}

func TestServerErrorOnClosedDB(t *testing.T) {
	database := db.NewTestDB(t)
	store.InsertItem(context.Background(), database, model.Draft{
		Name: "x", Description: "x", Category: "x", State: model.StatePending,
	})
	database.Close()

	rec := httptest.NewRecorder()
	NewRouter(database, "").ServeHTTP(rec, httptest.NewRequest("GET", "/api/items", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
