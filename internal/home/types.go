package home

import "fmt"

// Privilege is a user's role within a household.
type Privilege string

// Privilege constants.
const (
	PrivilegeOwner    Privilege = "owner"
	PrivilegeAdmin    Privilege = "admin"
	PrivilegeResident Privilege = "resident"
)

// AllPrivileges returns every known privilege.
func AllPrivileges() []Privilege {
	return []Privilege{PrivilegeOwner, PrivilegeAdmin, PrivilegeResident}
}

// Valid reports whether p is a known privilege.
func (p Privilege) Valid() bool {
	switch p {
	case PrivilegeOwner, PrivilegeAdmin, PrivilegeResident:
		return true
	}
	return false
}

// ParsePrivilege converts s to a Privilege. Matching is exact.
func ParsePrivilege(s string) (Privilege, error) {
	p := Privilege(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidPrivilege, s, AllPrivileges())
	}
	return p, nil
}

// DeviceType classifies a device.
type DeviceType string

// DeviceType constants.
const (
	DeviceTypeLight      DeviceType = "light"
	DeviceTypeThermostat DeviceType = "thermostat"
	DeviceTypeCamera     DeviceType = "camera"
	DeviceTypeLock       DeviceType = "lock"
	DeviceTypeSensor     DeviceType = "sensor"
)

// AllDeviceTypes returns every known device type.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{
		DeviceTypeLight,
		DeviceTypeThermostat,
		DeviceTypeCamera,
		DeviceTypeLock,
		DeviceTypeSensor,
	}
}

// Valid reports whether t is a known device type.
func (t DeviceType) Valid() bool {
	switch t {
	case DeviceTypeLight, DeviceTypeThermostat, DeviceTypeCamera, DeviceTypeLock, DeviceTypeSensor:
		return true
	}
	return false
}

// ParseDeviceType converts s to a DeviceType. Matching is exact.
func ParseDeviceType(s string) (DeviceType, error) {
	t := DeviceType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q (want one of %v)", ErrInvalidDeviceType, s, AllDeviceTypes())
	}
	return t, nil
}
