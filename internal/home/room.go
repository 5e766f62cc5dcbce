package home

import (
	"encoding/json"
	"fmt"
)

// Room is a named room in a house. Names are unique across all houses.
type Room struct {
	Name  string
	Floor int
	House House
}

// NewRoom builds a validated Room. On error the zero Room is returned.
func NewRoom(name string, floor int, house House) (Room, error) {
	r := Room{Name: name, Floor: floor, House: house}
	if err := r.Validate(); err != nil {
		return Room{}, err
	}
	return r, nil
}

// Key returns the room name.
func (r Room) Key() string { return r.Name }

// Validate checks every field of r, including the embedded house.
func (r Room) Validate() error {
	if err := ValidateRoomName(r.Name); err != nil {
		return err
	}
	if err := ValidateFloor(r.Floor); err != nil {
		return err
	}
	if err := r.House.Validate(); err != nil {
		return fmt.Errorf("house: %w", err)
	}
	return nil
}

// Renamed returns a copy of r under a new name, validated.
func (r Room) Renamed(name string) (Room, error) {
	return NewRoom(name, r.Floor, r.House)
}

type roomDocument struct {
	Name  string `json:"name"`
	Floor int    `json:"floor"`
	House House  `json:"house"`
}

// MarshalJSON implements json.Marshaler.
func (r Room) MarshalJSON() ([]byte, error) {
	return json.Marshal(roomDocument{Name: r.Name, Floor: r.Floor, House: r.House})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Room) UnmarshalJSON(data []byte) error {
	var doc roomDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := NewRoom(doc.Name, doc.Floor, doc.House)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
