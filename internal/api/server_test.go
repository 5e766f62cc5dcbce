package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nerrad567/homebase/internal/home"
	"github.com/nerrad567/homebase/internal/infrastructure/config"
	"github.com/nerrad567/homebase/internal/infrastructure/logging"
	"github.com/nerrad567/homebase/internal/store"
)

const (
	userJSON   = `{"user_id":"u1","name":"Ada","email":"ada@example.com","privilege":"owner"}`
	houseJSON  = `{"house_id":"h1","address":"1 Main St","owner":` + userJSON + `,"gps_location":[51.5,-0.12],"num_rooms":4,"num_baths":2}`
	roomJSON   = `{"name":"Kitchen","floor":0,"house":` + houseJSON + `}`
	deviceJSON = `{"device_id":"d1","type":"light","room":` + roomJSON + `}`
)

// testServer creates a Server over an in-memory backend with the hub
// registered as the change observer.
func testServer(t *testing.T, checks map[string]HealthChecker) (*Server, *store.MemoryBackend) {
	t.Helper()

	backend := store.NewMemoryBackend()
	registry := home.NewRegistry(backend)
	log := logging.Discard()

	srv, err := New(Deps{
		Config: config.APIConfig{
			Host: "127.0.0.1",
			Timeouts: config.APITimeoutConfig{
				Read:  5,
				Write: 5,
				Idle:  5,
			},
		},
		WS: config.WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logger:   log,
		Registry: registry,
		Checks:   checks,
		Version:  "test",
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	registry.SetObserver(srv.Hub())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go srv.Hub().Run(ctx)

	return srv, backend
}

// do sends a request through the full router and returns the recorder.
func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) Error {
	t.Helper()
	var e Error
	if err := json.Unmarshal(rec.Body.Bytes(), &e); err != nil {
		t.Fatalf("error body is not JSON: %v (%s)", err, rec.Body.String())
	}
	return e
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{Registry: home.NewRegistry(store.NewMemoryBackend())}); err == nil {
		t.Error("New() without logger should fail")
	}
	if _, err := New(Deps{Logger: logging.Discard()}); err == nil {
		t.Error("New() without registry should fail")
	}
}

func TestList_EmptyIsArray(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	for _, path := range []string{"/users", "/houses", "/rooms", "/devices"} {
		rec := do(t, h, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, rec.Code)
		}
		if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
			t.Errorf("GET %s body = %s, want []", path, got)
		}
	}
}

func TestUsers_CRUD(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPost, "/users", userJSON)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != userJSON {
		t.Errorf("create body = %s, want %s", got, userJSON)
	}

	rec = do(t, h, http.MethodPost, "/users", userJSON)
	if rec.Code != http.StatusConflict || decodeError(t, rec).Code != ErrCodeConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/users/u1", "")
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want 200", rec.Code)
	}

	updated := strings.Replace(userJSON, `"Ada"`, `"Ada L"`, 1)
	rec = do(t, h, http.MethodPut, "/users/u1", updated)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = do(t, h, http.MethodGet, "/users/u1", "")
	if !strings.Contains(rec.Body.String(), `"Ada L"`) {
		t.Errorf("get after update = %s", rec.Body.String())
	}

	rec = do(t, h, http.MethodDelete, "/users/u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	var detail map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
		t.Fatalf("delete body: %v", err)
	}
	if detail["detail"] != "User u1 deleted successfully." {
		t.Errorf("detail = %q", detail["detail"])
	}

	rec = do(t, h, http.MethodDelete, "/users/u1", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCreate_InputErrors(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	tests := []struct {
		name     string
		path     string
		body     string
		wantCode string
	}{
		{"bad email", "/users", strings.Replace(userJSON, "ada@example.com", "nope", 1), ErrCodeValidation},
		{"unknown privilege", "/users", strings.Replace(userJSON, `"owner"`, `"guest"`, 1), ErrCodeValidation},
		{"latitude out of range", "/houses", strings.Replace(houseJSON, "51.5", "91", 1), ErrCodeValidation},
		{"negative floor", "/rooms", strings.Replace(roomJSON, `"floor":0`, `"floor":-1`, 1), ErrCodeValidation},
		{"invalid embedded owner", "/houses", strings.Replace(houseJSON, "ada@example.com", "x", 1), ErrCodeValidation},
		{"malformed JSON", "/users", `{"user_id":`, ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (%s)", rec.Code, rec.Body.String())
			}
			if got := decodeError(t, rec).Code; got != tt.wantCode {
				t.Errorf("code = %q, want %q", got, tt.wantCode)
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/users", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("rejected creates left records behind: %s", rec.Body.String())
	}
}

func TestUpdate_Errors(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodPut, "/users/u1", userJSON)
	if rec.Code != http.StatusNotFound {
		t.Errorf("update absent status = %d, want 404", rec.Code)
	}

	do(t, h, http.MethodPost, "/users", userJSON)
	rec = do(t, h, http.MethodPut, "/users/u2", userJSON)
	if rec.Code != http.StatusBadRequest || decodeError(t, rec).Code != ErrCodeBadRequest {
		t.Errorf("mismatched key status = %d, want 400", rec.Code)
	}
}

func TestNestedChain(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	for _, step := range []struct{ path, body string }{
		{"/users", userJSON},
		{"/houses", houseJSON},
		{"/rooms", roomJSON},
		{"/devices", deviceJSON},
	} {
		if rec := do(t, h, http.MethodPost, step.path, step.body); rec.Code != http.StatusCreated {
			t.Fatalf("POST %s status = %d: %s", step.path, rec.Code, rec.Body.String())
		}
	}

	rec := do(t, h, http.MethodGet, "/devices/d1", "")
	var got struct {
		Room struct {
			House struct {
				Owner struct {
					Email string `json:"email"`
				} `json:"owner"`
				GPS []float64 `json:"gps_location"`
			} `json:"house"`
		} `json:"room"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("device body: %v", err)
	}
	if got.Room.House.Owner.Email != "ada@example.com" {
		t.Errorf("owner email = %q", got.Room.House.Owner.Email)
	}
	if len(got.Room.House.GPS) != 2 || got.Room.House.GPS[0] != 51.5 {
		t.Errorf("gps_location = %v", got.Room.House.GPS)
	}
}

func TestRenameRoom(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/rooms", roomJSON)
	do(t, h, http.MethodPost, "/rooms", strings.Replace(roomJSON, "Kitchen", "Hall", 1))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"absent room", "/rooms/Attic/rename", `{"name":"Loft"}`, http.StatusNotFound},
		{"target taken", "/rooms/Kitchen/rename", `{"name":"Hall"}`, http.StatusConflict},
		{"empty name", "/rooms/Kitchen/rename", `{"name":""}`, http.StatusBadRequest},
		{"bad body", "/rooms/Kitchen/rename", `[]`, http.StatusBadRequest},
		{"success", "/rooms/Kitchen/rename", `{"name":"Diner"}`, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	if rec := do(t, h, http.MethodGet, "/rooms/Kitchen", ""); rec.Code != http.StatusNotFound {
		t.Errorf("old name status = %d, want 404", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/rooms", "")
	var rooms []struct {
		Name  string `json:"name"`
		Floor int    `json:"floor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rooms); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Name != "Hall" || rooms[1].Name != "Diner" {
		t.Errorf("rooms = %+v, want [Hall Diner]", rooms)
	}
}

func TestRenameRoom_ViaPut(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	do(t, h, http.MethodPost, "/rooms", roomJSON)
	do(t, h, http.MethodPost, "/rooms", strings.Replace(roomJSON, "Kitchen", "Hall", 1))

	renamed := strings.Replace(strings.Replace(roomJSON, "Kitchen", "Pantry", 1), `"floor":0`, `"floor":2`, 1)
	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
	}{
		{"absent room", "/rooms/Attic", renamed, http.StatusNotFound},
		{"target taken", "/rooms/Kitchen", strings.Replace(roomJSON, "Kitchen", "Hall", 1), http.StatusConflict},
		{"success", "/rooms/Kitchen", renamed, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}

	rec := do(t, h, http.MethodGet, "/rooms/Pantry", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET renamed room status = %d", rec.Code)
	}
	var room struct {
		Floor int `json:"floor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &room); err != nil {
		t.Fatalf("room body: %v", err)
	}
	if room.Floor != 0 {
		t.Errorf("floor = %d, want 0 kept from the stored room", room.Floor)
	}
	if rec := do(t, h, http.MethodGet, "/rooms/Kitchen", ""); rec.Code != http.StatusNotFound {
		t.Errorf("old name status = %d, want 404", rec.Code)
	}
}

func TestDelete_Confirmation(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	tests := []struct {
		create, body, path, want string
	}{
		{"/users", userJSON, "/users/u1", "User u1 deleted successfully."},
		{"/houses", houseJSON, "/houses/h1", "House h1 deleted successfully."},
		{"/rooms", roomJSON, "/rooms/Kitchen", "Room 'Kitchen' deleted successfully."},
		{"/devices", deviceJSON, "/devices/d1", "Device 'd1' deleted successfully."},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if rec := do(t, h, http.MethodPost, tt.create, tt.body); rec.Code != http.StatusCreated {
				t.Fatalf("POST %s status = %d", tt.create, rec.Code)
			}
			rec := do(t, h, http.MethodDelete, tt.path, "")
			var detail map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &detail); err != nil {
				t.Fatalf("body: %v", err)
			}
			if detail["detail"] != tt.want {
				t.Errorf("detail = %q, want %q", detail["detail"], tt.want)
			}
		})
	}
}

func TestCorruptDocument(t *testing.T) {
	srv, backend := testServer(t, nil)
	h := srv.Handler()

	if err := backend.Save(context.Background(), home.CollectionUsers, []byte("{not json")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	rec := do(t, h, http.MethodGet, "/users", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if e := decodeError(t, rec); e.Code != ErrCodeInternal || strings.Contains(e.Message, "not json") {
		t.Errorf("error = %+v, want opaque internal_error", e)
	}
}

func TestBodyTooLarge(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	body := `{"user_id":"u1","name":"` + strings.Repeat("a", maxRequestBodySize) + `"}`
	rec := do(t, h, http.MethodPost, "/users", body)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

type fakeCheck struct{ err error }

func (f fakeCheck) HealthCheck(context.Context) error { return f.err }

func TestHealth(t *testing.T) {
	srv, _ := testServer(t, map[string]HealthChecker{"storage": fakeCheck{}})
	rec := do(t, srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("health body: %v", err)
	}
	if resp.Status != "ok" || resp.Checks["storage"] != "ok" || resp.Version != "test" {
		t.Errorf("health = %+v", resp)
	}

	srv, _ = testServer(t, map[string]HealthChecker{
		"storage": fakeCheck{},
		"mqtt":    fakeCheck{err: errors.New("mqtt: not connected")},
	})
	rec = do(t, srv.Handler(), http.MethodGet, "/health", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"degraded"`) {
		t.Errorf("degraded body = %s", rec.Body.String())
	}
}

func TestMetrics(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()
	do(t, h, http.MethodPost, "/users", userJSON)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var m SystemMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("metrics body: %v", err)
	}
	if m.Collections[home.CollectionUsers] != 1 || m.Collections[home.CollectionRooms] != 0 {
		t.Errorf("collections = %v", m.Collections)
	}
	if m.MQTT.Enabled || m.Database != nil {
		t.Errorf("optional sections should be empty: %+v", m)
	}
}

func TestMiddleware_RequestID(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.Handler()

	rec := do(t, h, http.MethodGet, "/users", "")
	if len(rec.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("generated X-Request-ID = %q, want a UUID", rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("X-Request-ID = %q, want echoed abc-123", rec.Header().Get("X-Request-ID"))
	}
}

func TestMiddleware_CORS(t *testing.T) {
	srv, _ := testServer(t, nil)
	srv.cfg.CORS.AllowedOrigins = []string{"http://dashboard.local"}
	h := srv.Handler()

	req := httptest.NewRequest(http.MethodOptions, "/users", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://dashboard.local" {
		t.Error("allowed origin not echoed")
	}

	req = httptest.NewRequest(http.MethodGet, "/users", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("disallowed origin received CORS headers")
	}
}

func TestMiddleware_Recovery(t *testing.T) {
	srv, _ := testServer(t, nil)
	h := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := do(t, h, http.MethodGet, "/", "")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	srv, _ := testServer(t, nil)
	rec := do(t, srv.Handler(), http.MethodGet, "/widgets", "")
	if rec.Code != http.StatusNotFound || decodeError(t, rec).Code != ErrCodeNotFound {
		t.Errorf("status = %d, want 404 not_found", rec.Code)
	}
}
