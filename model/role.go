package model

import "fmt"

// Role is the account kind the backend assigns to a user.
type Role string

const (
	RolePatient         Role = "patient"
	RoleDoctor          Role = "doctor"
	RoleAssistantDoctor Role = "assistantDoctor"
	RoleNurse           Role = "nurse"
	RoleAdmin           Role = "admin"
)

// Roles lists every role in the order the registration form offers them.
var Roles = []Role{RoleAdmin, RoleDoctor, RoleAssistantDoctor, RoleNurse, RolePatient}

var roleLabels = map[Role]string{
	RoleAdmin:           "Admin",
	RoleDoctor:          "Doctor",
	RoleAssistantDoctor: "Assistant Doctor",
	RoleNurse:           "Nurse",
	RolePatient:         "Patient",
}

// ParseRole returns the Role for s or ErrUnknownRole.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleLabels[r]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleLabels[r]
	return ok
}

// Label is the human readable role name.
func (r Role) Label() string {
	if l, ok := roleLabels[r]; ok {
		return l
	}
	return string(r)
}

// IsSurgeon reports whether the role works the doctor dashboard.
func (r Role) IsSurgeon() bool {
	return r == RoleDoctor || r == RoleAssistantDoctor
}

// LandingPath is where a freshly logged in user of this role is sent.
func (r Role) LandingPath() string {
	switch r {
	case RoleAdmin:
		return "/adminhome"
	case RoleDoctor:
		return "/doctor-home"
	case RolePatient:
		return "/patient-home"
	default:
		return HomePath
	}
}

// HomePath is the public landing page; logout always returns here.
const HomePath = "/"
