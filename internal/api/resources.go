package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homebase/internal/store"
)

// resource serves the uniform CRUD surface for one collection.
type resource[E store.Keyed] struct {
	srv   *Server
	store *store.Store[E]
	// title is the capitalised singular used in delete confirmations.
	title    string
	keyField string

	// quoteKey wraps the key in single quotes in delete confirmations.
	quoteKey bool
	// rekey, when set, handles a PUT whose body key differs from the path
	// key. Without it such a PUT is a 400.
	rekey func(ctx context.Context, oldKey string, record E) (E, error)
}

func newResource[E store.Keyed](srv *Server, st *store.Store[E], title string) *resource[E] {
	return &resource[E]{srv: srv, store: st, title: title}
}

// mount registers the collection routes under prefix.
func (h *resource[E]) mount(r chi.Router, prefix, keyField string) {
	r.Route(prefix, func(r chi.Router) {
		h.routes(r, keyField)
	})
}

func (h *resource[E]) routes(r chi.Router, keyField string) {
	h.keyField = keyField
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{key}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Put("/", h.update)
		r.Delete("/", h.remove)
	})
}

// list returns every record in insertion order; never null.
func (h *resource[E]) list(w http.ResponseWriter, r *http.Request) {
	records, err := h.store.List(r.Context())
	if err != nil {
		h.srv.writeStoreError(w, r, err)
		return
	}
	if records == nil {
		records = []E{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *resource[E]) get(w http.ResponseWriter, r *http.Request) {
	record, err := h.store.Get(r.Context(), chi.URLParam(r, "key"))
	if err != nil {
		h.srv.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *resource[E]) create(w http.ResponseWriter, r *http.Request) {
	record, ok := decodeBody[E](w, r)
	if !ok {
		return
	}

	created, err := h.store.Create(r.Context(), record)
	if err != nil {
		h.srv.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// update fully replaces the record at the path key. A body carrying a
// different key is handed to rekey when the collection supports it.
func (h *resource[E]) update(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	record, ok := decodeBody[E](w, r)
	if !ok {
		return
	}

	var updated E
	var err error
	switch {
	case record.Key() == key:
		updated, err = h.store.Update(r.Context(), record)
	case h.rekey != nil:
		updated, err = h.rekey(r.Context(), key, record)
	default:
		writeBadRequest(w, fmt.Sprintf("%s %q in body does not match %q in path", h.keyField, record.Key(), key))
		return
	}
	if err != nil {
		h.srv.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *resource[E]) remove(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if err := h.store.Delete(r.Context(), key); err != nil {
		h.srv.writeStoreError(w, r, err)
		return
	}
	shown := key
	if h.quoteKey {
		shown = "'" + key + "'"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"detail": fmt.Sprintf("%s %s deleted successfully.", h.title, shown),
	})
}

// decodeBody decodes a request body into E, writing the error response
// itself when decoding fails. Decoding runs entity validation.
func decodeBody[E any](w http.ResponseWriter, r *http.Request) (E, bool) {
	var v E
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		writeDecodeError(w, err)
		var zero E
		return zero, false
	}
	return v, true
}

func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case isValidationError(err):
		writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		writeBadRequest(w, "invalid JSON body")
	}
}
