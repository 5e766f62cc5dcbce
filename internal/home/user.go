package home

import (
	"encoding/json"
	"fmt"
)

// User is a person with access to one or more houses.
type User struct {
	ID        string
	Name      string
	Email     string
	Privilege Privilege
}

// NewUser builds a validated User. On error the zero User is returned.
func NewUser(id, name, email string, privilege Privilege) (User, error) {
	u := User{ID: id, Name: name, Email: email, Privilege: privilege}
	if err := u.Validate(); err != nil {
		return User{}, err
	}
	return u, nil
}

// Key returns the user_id.
func (u User) Key() string { return u.ID }

// Validate checks every field of u.
func (u User) Validate() error {
	if err := ValidateKey("user_id", u.ID); err != nil {
		return err
	}
	if err := ValidateUserName(u.Name); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if !u.Privilege.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPrivilege, u.Privilege)
	}
	return nil
}

type userDocument struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Privilege string `json:"privilege"`
}

// MarshalJSON implements json.Marshaler.
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(userDocument{
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Privilege: string(u.Privilege),
	})
}

// UnmarshalJSON implements json.Unmarshaler. The decoded user is validated.
func (u *User) UnmarshalJSON(data []byte) error {
	var doc userDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	privilege, err := ParsePrivilege(doc.Privilege)
	if err != nil {
		return err
	}
	parsed, err := NewUser(doc.UserID, doc.Name, doc.Email, privilege)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
