package home

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation constants.
const (
	// MaxUserNameLength is the longest user name, in characters.
	MaxUserNameLength = 50

	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// emailPattern accepts local@domain.tld with no further checks.
var emailPattern = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)

// ValidateKey checks that a record key is not empty or whitespace.
func ValidateKey(field, key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: %s cannot be empty", ErrInvalidKey, field)
	}
	return nil
}

// ValidateUserName checks that name has between 1 and MaxUserNameLength characters.
func ValidateUserName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 1 || n > MaxUserNameLength {
		return fmt.Errorf("%w: must be 1-%d characters, got %d", ErrInvalidName, MaxUserNameLength, n)
	}
	return nil
}

// ValidateEmail checks email against a simple local@domain.tld shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateLocation checks latitude and longitude ranges. NaN is rejected.
func ValidateLocation(loc GPSLocation) error {
	if !(loc.Lat >= MinLatitude && loc.Lat <= MaxLatitude) {
		return fmt.Errorf("%w: latitude %v outside [%v, %v]", ErrInvalidLocation, loc.Lat, MinLatitude, MaxLatitude)
	}
	if !(loc.Lon >= MinLongitude && loc.Lon <= MaxLongitude) {
		return fmt.Errorf("%w: longitude %v outside [%v, %v]", ErrInvalidLocation, loc.Lon, MinLongitude, MaxLongitude)
	}
	return nil
}

// ValidateCount checks that a counted field is not negative.
func ValidateCount(field string, n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %s cannot be negative, got %d", ErrInvalidCount, field, n)
	}
	return nil
}

// ValidateRoomName checks that a room name is not empty after trimming.
func ValidateRoomName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: room name cannot be empty", ErrInvalidName)
	}
	return nil
}

// ValidateFloor checks that a floor number is not negative.
func ValidateFloor(floor int) error {
	if floor < 0 {
		return fmt.Errorf("%w: cannot be negative, got %d", ErrInvalidFloor, floor)
	}
	return nil
}
