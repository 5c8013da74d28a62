package http

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

const defaultQueryLimit = 10

// Store is the narrow capability the handlers need from the database layer.
// db.Manager implements it; tests substitute a fake.
type Store interface {
	IsReady() bool
	InsertOne(ctx context.Context, collection string, doc map[string]any) (string, error)
	InsertMany(ctx context.Context, collection string, docs []map[string]any) (int, error)
	FindMany(ctx context.Context, collection string, filter map[string]any, limit int64) ([]map[string]any, error)
	UpdateOne(ctx context.Context, collection string, filter, fields map[string]any) (matched, modified int64, err error)
	DeleteOne(ctx context.Context, collection string, filter map[string]any) (int64, error)
}

type Handlers struct {
	store   Store
	started time.Time
}

func NewHandlers(store Store) *Handlers {
	return &Handlers{store: store, started: time.Now()}
}

// Insert stores one document, merged with optional metadata and stamped
// with a server-side createdAt.
func (h *Handlers) Insert(w http.ResponseWriter, r *http.Request) {
	body := requestBody(r)

	collection, ok := stringField(body, "collection")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: collection")
		return
	}
	doc, ok := objectField(body, "document")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: document")
		return
	}
	if !h.store.IsReady() {
		writeError(w, http.StatusServiceUnavailable, "Database not connected")
		return
	}

	metadata, _ := objectField(body, "metadata")
	stamped := stampCreate(doc, metadata, time.Now().UTC())

	id, err := h.store.InsertOne(r.Context(), collection, stamped)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"insertedId": id,
		"collection": collection,
	})
}

// InsertMany bulk-inserts a sequence of documents, each stamped like Insert.
func (h *Handlers) InsertMany(w http.ResponseWriter, r *http.Request) {
	body := requestBody(r)

	collection, ok := stringField(body, "collection")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: collection")
		return
	}
	raw, ok := body["documents"].([]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "Field 'documents' must be an array")
		return
	}
	if !h.store.IsReady() {
		writeError(w, http.StatusServiceUnavailable, "Database not connected")
		return
	}

	metadata, _ := objectField(body, "metadata")
	now := time.Now().UTC()

	docs := make([]map[string]any, 0, len(raw))
	for i, v := range raw {
		doc, ok := v.(map[string]any)
		if !ok {
			writeError(w, http.StatusBadRequest,
				fmt.Sprintf("Element %d of 'documents' is not an object", i))
			return
		}
		docs = append(docs, stampCreate(doc, metadata, now))
	}

	count, err := h.store.InsertMany(r.Context(), collection, docs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"insertedCount": count,
		"collection":    collection,
	})
}

// Query finds documents matching an optional passthrough filter, capped at
// an optional limit (default 10).
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	body := requestBody(r)

	collection, ok := stringField(body, "collection")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: collection")
		return
	}
	if !h.store.IsReady() {
		writeError(w, http.StatusServiceUnavailable, "Database not connected")
		return
	}

	filter, _ := objectField(body, "filter")
	if filter == nil {
		filter = map[string]any{}
	}

	limit := int64(defaultQueryLimit)
	if n, ok := body["limit"].(float64); ok && n > 0 {
		limit = int64(n)
	}

	docs, err := h.store.FindMany(r.Context(), collection, filter, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(docs),
		"documents": docs,
	})
}

// Update sets the given fields on the first document matching the filter,
// stamping updatedAt. Matching no document is a success with zero counts.
func (h *Handlers) Update(w http.ResponseWriter, r *http.Request) {
	body := requestBody(r)

	collection, ok := stringField(body, "collection")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: collection")
		return
	}
	filter, ok := objectField(body, "filter")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: filter")
		return
	}
	update, ok := objectField(body, "update")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: update")
		return
	}
	if !h.store.IsReady() {
		writeError(w, http.StatusServiceUnavailable, "Database not connected")
		return
	}

	fields := make(map[string]any, len(update)+1)
	for k, v := range update {
		fields[k] = v
	}
	fields["updatedAt"] = time.Now().UTC()

	matched, modified, err := h.store.UpdateOne(r.Context(), collection, filter, fields)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"matchedCount":  matched,
		"modifiedCount": modified,
	})
}

// Delete removes the first document matching the filter.
func (h *Handlers) Delete(w http.ResponseWriter, r *http.Request) {
	body := requestBody(r)

	collection, ok := stringField(body, "collection")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: collection")
		return
	}
	filter, ok := objectField(body, "filter")
	if !ok {
		writeError(w, http.StatusBadRequest, "Missing required field: filter")
		return
	}
	if !h.store.IsReady() {
		writeError(w, http.StatusServiceUnavailable, "Database not connected")
		return
	}

	deleted, err := h.store.DeleteOne(r.Context(), collection, filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"deletedCount": deleted,
	})
}

// stampCreate copies doc, overlays metadata, and adds createdAt. The input
// map is never mutated; a caller-supplied createdAt is overwritten.
func stampCreate(doc, metadata map[string]any, now time.Time) map[string]any {
	out := make(map[string]any, len(doc)+len(metadata)+1)
	for k, v := range doc {
		out[k] = v
	}
	for k, v := range metadata {
		out[k] = v
	}
	out["createdAt"] = now
	return out
}

func stringField(body map[string]any, key string) (string, bool) {
	s, ok := body[key].(string)
	return s, ok && s != ""
}

func objectField(body map[string]any, key string) (map[string]any, bool) {
	m, ok := body[key].(map[string]any)
	return m, ok
}
