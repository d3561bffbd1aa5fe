package api

import (
	"database/sql"
	"net/http"
)

// NewRouter creates the API router with all endpoints registered.
// publicURL is the base of the URLs handed out for uploaded objects.
func NewRouter(db *sql.DB, publicURL string) http.Handler {
	mux := http.NewServeMux()

	itemsHandler := &ItemsHandler{DB: db}
	objectsHandler := &ObjectsHandler{DB: db, PublicURL: publicURL}

	mux.HandleFunc("GET /api/items", itemsHandler.List)
	mux.HandleFunc("POST /api/items", itemsHandler.Create)
	mux.HandleFunc("PATCH /api/items/{id}", itemsHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemsHandler.Delete)

	mux.HandleFunc("PUT /api/objects/{name}", objectsHandler.Upload)
	mux.HandleFunc("GET /objects/{name}", objectsHandler.Get)

	return LoggingMiddleware(mux)
}
