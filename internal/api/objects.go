package api

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"strconv"

	"golang.org/x/crypto/blake2b"

	"github.com/erazemk/vitrina/internal/store"
)

// MaxObjectSize is the largest accepted upload.
const MaxObjectSize = 5 << 20

// ObjectsHandler stores uploaded images and serves them publicly.
type ObjectsHandler struct {
	DB        *sql.DB
	PublicURL string
}

// UploadResponse is returned by a successful upload.
type UploadResponse struct {
	URL string `json:"url"`
}

// Upload handles PUT /api/objects/{name}. The body is the raw image.
func (h *ObjectsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := store.ValidateObjectName(name); err != nil {
		writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxObjectSize)
	data, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			jsonResponse(w, http.StatusRequestEntityTooLarge, ErrorBody{Error: "object too large", Field: "object"})
			return
		}
		jsonError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	mime, err := store.DetectImageMIME(data)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.PutObject(r.Context(), h.DB, name, data, mime); err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, UploadResponse{URL: store.ObjectURL(h.PublicURL, name)})
}

// Get handles GET /objects/{name}.
func (h *ObjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	data, mime, err := store.GetObject(r.Context(), h.DB, r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no such object")
		return
	}

	sum := blake2b.Sum256(data)
	etag := `"` + hex.EncodeToString(sum[:]) + `"`

	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}
