package home

import (
	"encoding/json"
	"fmt"
)

// Device is a controllable or monitoring device installed in a room.
type Device struct {
	ID   string
	Type DeviceType
	Room Room
}

// NewDevice builds a validated Device. On error the zero Device is returned.
func NewDevice(id string, deviceType DeviceType, room Room) (Device, error) {
	d := Device{ID: id, Type: deviceType, Room: room}
	if err := d.Validate(); err != nil {
		return Device{}, err
	}
	return d, nil
}

// Key returns the device_id.
func (d Device) Key() string { return d.ID }

// Validate checks every field of d, including the embedded room chain.
func (d Device) Validate() error {
	if !d.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDeviceType, d.Type)
	}
	if err := ValidateKey("device_id", d.ID); err != nil {
		return err
	}
	if err := d.Room.Validate(); err != nil {
		return fmt.Errorf("room: %w", err)
	}
	return nil
}

type deviceDocument struct {
	DeviceID string `json:"device_id"`
	Type     string `json:"type"`
	Room     Room   `json:"room"`
}

// MarshalJSON implements json.Marshaler.
func (d Device) MarshalJSON() ([]byte, error) {
	return json.Marshal(deviceDocument{DeviceID: d.ID, Type: string(d.Type), Room: d.Room})
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Device) UnmarshalJSON(data []byte) error {
	var doc deviceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	deviceType, err := ParseDeviceType(doc.Type)
	if err != nil {
		return err
	}
	parsed, err := NewDevice(doc.DeviceID, deviceType, doc.Room)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
