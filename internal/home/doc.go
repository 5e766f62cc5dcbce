// Package home defines the Homebase record types and their validation.
//
// There are four record types, each keyed by a natural string key:
//
//   - User   (user_id)   name, email, privilege
//   - House  (house_id)  address, owner User, gps_location, num_rooms, num_baths
//   - Room   (name)      floor, house House
//   - Device (device_id) type, room Room
//
// References are embedded by value: a Device carries a full copy of its
// Room, which carries its House, which carries its owner User. Copies are
// taken when the referencing record is written and are never refreshed, so
// updating a House leaves earlier Room and Device copies unchanged.
//
// Constructors (NewUser, NewHouse, NewRoom, NewDevice) validate every field
// and return the zero value on error. JSON decoding goes through the same
// constructors, so a decoded record is always valid:
//
//	var d home.Device
//	if err := json.Unmarshal(body, &d); err != nil {
//	    if errors.Is(err, home.ErrValidation) {
//	        // bad input
//	    }
//	}
//
// Registry bundles one store.Store per type and implements room renames.
package home
