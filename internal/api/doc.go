// Package api implements the HTTP REST API and WebSocket change feed for Homebase.
//
// This package provides:
//   - CRUD endpoints for users, houses, rooms and devices
//   - POST /rooms/{name}/rename for moving a room to a new key
//   - WebSocket hub broadcasting committed changes per collection
//   - Health and metrics endpoints
//   - GET /changes over the SQLite change journal
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Errors
//
// Every error response has the form {"status", "code", "message"}.
// Validation failures map to 400, missing keys to 404, duplicate keys to
// 409, and corrupt documents or backend failures to 500.
//
// # Lifecycle
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
