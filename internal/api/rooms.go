package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homebase/internal/home"
)

// RenameRoomRequest is the body of POST /rooms/{name}/rename.
type RenameRoomRequest struct {
	Name string `json:"name"`
}

// handleRenameRoom moves a room to a new name, keeping floor and house.
func (s *Server) handleRenameRoom(w http.ResponseWriter, r *http.Request) {
	oldName := chi.URLParam(r, "key")

	req, ok := decodeBody[RenameRoomRequest](w, r)
	if !ok {
		return
	}

	room, err := s.registry.RenameRoom(r.Context(), oldName, req.Name)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

// renameRoomOnUpdate serves PUT /rooms/{name} with a different name in the
// body. Only the name moves; floor and house are kept from the stored room.
func (s *Server) renameRoomOnUpdate(ctx context.Context, oldName string, room home.Room) (home.Room, error) {
	return s.registry.RenameRoom(ctx, oldName, room.Name)
}
