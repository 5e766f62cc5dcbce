package home

import (
	"encoding/json"
	"fmt"
)

// GPSLocation is a latitude/longitude pair in decimal degrees.
// Its JSON form is a two-element array: [lat, lon].
type GPSLocation struct {
	Lat float64
	Lon float64
}

// MarshalJSON implements json.Marshaler.
func (g GPSLocation) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{g.Lat, g.Lon})
}

// UnmarshalJSON implements json.Unmarshaler. Ranges are checked by House.
func (g *GPSLocation) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("%w: want [lat, lon], got %d values", ErrInvalidLocation, len(pair))
	}
	g.Lat, g.Lon = pair[0], pair[1]
	return nil
}

// House is a property owned by a user. Owner is a copy of the user as it
// was when the house was written; it is not kept in sync with the users
// collection.
type House struct {
	ID       string
	Address  string
	Owner    User
	Location GPSLocation
	NumRooms int
	NumBaths int
}

// NewHouse builds a validated House. On error the zero House is returned.
func NewHouse(id, address string, owner User, location GPSLocation, numRooms, numBaths int) (House, error) {
	h := House{
		ID:       id,
		Address:  address,
		Owner:    owner,
		Location: location,
		NumRooms: numRooms,
		NumBaths: numBaths,
	}
	if err := h.Validate(); err != nil {
		return House{}, err
	}
	return h, nil
}

// Key returns the house_id.
func (h House) Key() string { return h.ID }

// Validate checks every field of h, including the embedded owner.
func (h House) Validate() error {
	if err := ValidateKey("house_id", h.ID); err != nil {
		return err
	}
	if err := h.Owner.Validate(); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if err := ValidateLocation(h.Location); err != nil {
		return err
	}
	if err := ValidateCount("num_rooms", h.NumRooms); err != nil {
		return err
	}
	return ValidateCount("num_baths", h.NumBaths)
}

type houseDocument struct {
	HouseID     string      `json:"house_id"`
	Address     string      `json:"address"`
	Owner       User        `json:"owner"`
	GPSLocation GPSLocation `json:"gps_location"`
	NumRooms    int         `json:"num_rooms"`
	NumBaths    int         `json:"num_baths"`
}

// MarshalJSON implements json.Marshaler.
func (h House) MarshalJSON() ([]byte, error) {
	return json.Marshal(houseDocument{
		HouseID:     h.ID,
		Address:     h.Address,
		Owner:       h.Owner,
		GPSLocation: h.Location,
		NumRooms:    h.NumRooms,
		NumBaths:    h.NumBaths,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The decoded house and its
// owner are validated.
func (h *House) UnmarshalJSON(data []byte) error {
	var doc houseDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	parsed, err := NewHouse(doc.HouseID, doc.Address, doc.Owner, doc.GPSLocation, doc.NumRooms, doc.NumBaths)
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}
