package api

import (
	"net/http"
	"strconv"

	"github.com/nerrad567/homebase/internal/audit"
)

// handleListChanges returns journalled changes, newest first.
//
// Query parameters:
//   - collection: users, houses, rooms or devices
//   - op: created, updated, deleted or renamed
//   - key: matches the current or previous key
//   - limit: max results (default 50, max 200)
//   - offset: pagination offset
func (s *Server) handleListChanges(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, ErrCodeUnavailable, "change journal requires the sqlite backend")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Collection: q.Get("collection"),
		Op:         q.Get("op"),
		Key:        q.Get("key"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeBadRequest(w, "offset must be an integer")
			return
		}
		filter.Offset = n
	}

	result, err := s.journal.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list changes", "error", err)
		writeInternalError(w, "failed to list changes")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
