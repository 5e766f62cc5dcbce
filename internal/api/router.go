package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/homebase/internal/home"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)
	r.Get("/changes", s.handleListChanges)
	r.Get(s.wsPath(), s.handleWebSocket)

	newResource(s, s.registry.Users, "User").mount(r, "/"+home.CollectionUsers, "user_id")
	newResource(s, s.registry.Houses, "House").mount(r, "/"+home.CollectionHouses, "house_id")
	devices := newResource(s, s.registry.Devices, "Device")
	devices.quoteKey = true
	devices.mount(r, "/"+home.CollectionDevices, "device_id")

	rooms := newResource(s, s.registry.Rooms, "Room")
	rooms.quoteKey = true
	rooms.rekey = s.renameRoomOnUpdate
	r.Route("/"+home.CollectionRooms, func(r chi.Router) {
		rooms.routes(r, "name")
		r.Post("/{key}/rename", s.handleRenameRoom)
	})

	return r
}

func (s *Server) wsPath() string {
	if s.wsCfg.Path == "" {
		return "/ws"
	}
	return s.wsCfg.Path
}
