package home

import (
	"context"
	"fmt"
	"slices"

	"github.com/nerrad567/homebase/internal/store"
)

// Collection names, also used as file, row and object names by the backends.
const (
	CollectionUsers   = "users"
	CollectionHouses  = "houses"
	CollectionRooms   = "rooms"
	CollectionDevices = "devices"
)

// Collections returns every collection name in registry order.
func Collections() []string {
	return []string{CollectionUsers, CollectionHouses, CollectionRooms, CollectionDevices}
}

// IsCollection reports whether name is one of the registry's collections.
func IsCollection(name string) bool {
	return slices.Contains(Collections(), name)
}

// Registry owns one store per record type. Construct one per process and
// hand it to the API server.
type Registry struct {
	Users   *store.Store[User]
	Houses  *store.Store[House]
	Rooms   *store.Store[Room]
	Devices *store.Store[Device]
}

// NewRegistry creates the four stores over a shared backend.
func NewRegistry(backend store.Backend) *Registry {
	return &Registry{
		Users:   store.New[User](CollectionUsers, "user", backend),
		Houses:  store.New[House](CollectionHouses, "house", backend),
		Rooms:   store.New[Room](CollectionRooms, "room", backend),
		Devices: store.New[Device](CollectionDevices, "device", backend),
	}
}

// SetLogger sets the logger on every store.
func (r *Registry) SetLogger(logger store.Logger) {
	r.Users.SetLogger(logger)
	r.Houses.SetLogger(logger)
	r.Rooms.SetLogger(logger)
	r.Devices.SetLogger(logger)
}

// SetObserver sets the change observer on every store.
func (r *Registry) SetObserver(observer store.Observer) {
	r.Users.SetObserver(observer)
	r.Houses.SetObserver(observer)
	r.Rooms.SetObserver(observer)
	r.Devices.SetObserver(observer)
}

// SetRecorder sets the telemetry recorder on every store.
func (r *Registry) SetRecorder(recorder store.Recorder) {
	r.Users.SetRecorder(recorder)
	r.Houses.SetRecorder(recorder)
	r.Rooms.SetRecorder(recorder)
	r.Devices.SetRecorder(recorder)
}

// RenameRoom moves the room stored as oldName to newName, keeping its floor
// and house. Returns store.ErrNotFound if oldName is absent, store.ErrConflict
// if newName is taken by another room, and a validation error if newName is
// not a valid room name.
func (r *Registry) RenameRoom(ctx context.Context, oldName, newName string) (Room, error) {
	return r.Rooms.Rekey(ctx, oldName, func(current Room) (Room, error) {
		return current.Renamed(newName)
	})
}

// Counts returns the number of records in each collection.
func (r *Registry) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 4)
	for name, fn := range map[string]func(context.Context) (int, error){
		CollectionUsers:   r.Users.Len,
		CollectionHouses:  r.Houses.Len,
		CollectionRooms:   r.Rooms.Len,
		CollectionDevices: r.Devices.Len,
	} {
		n, err := fn(ctx)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", name, err)
		}
		counts[name] = n
	}
	return counts, nil
}
