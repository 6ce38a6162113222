package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// User is the session record kept for a logged in account. It is built once
// from a login response and replaced wholesale on the next login.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Role     Role   `json:"role"`
	Gender   string `json:"gender"`
	Image    string `json:"image"`
}

// Account is the user object as the backend returns it from login and the
// user lookup endpoints. Clinical staff and patients fill different fields.
type Account struct {
	ID              FlexString `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	Mobile          string     `json:"mobile"`
	Role            Role       `json:"role"`
	Gender          string     `json:"gender"`
	ProfileImageURL string     `json:"profileImageUrl"`
	Department      string     `json:"department,omitempty"`
	Designation     string     `json:"designation,omitempty"`
	Experience      FlexString `json:"experience,omitempty"`
	ShiftTime       string     `json:"shiftTime,omitempty"`
	Age             FlexString `json:"age,omitempty"`
	CaseType        string     `json:"caseType,omitempty"`
	BloodGroup      string     `json:"bloodGroup,omitempty"`
	Allergies       string     `json:"allergies,omitempty"`
	CreatedAt       string     `json:"createdAt,omitempty"`
}

// SessionUser turns a login reply into the session record. A reply without an
// id is rejected and no session may be created from it.
func (a *Account) SessionUser() (User, error) {
	if a == nil || strings.TrimSpace(string(a.ID)) == "" {
		return User{}, ErrInvalidLoginReply
	}
	return User{
		ID:       string(a.ID),
		Username: a.Username,
		Email:    a.Email,
		Mobile:   a.Mobile,
		Role:     a.Role,
		Gender:   a.Gender,
		Image:    a.ProfileImageURL,
	}, nil
}

// DirectoryName is the department label shown for a doctor in listings.
func (a Account) DirectoryName() string {
	return DepartmentDisplayName(a.Department)
}

// FlexString accepts JSON strings and numbers alike; the backend is not
// consistent about ids, ages and experience.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("flexstring: %w", err)
	}
	*f = FlexString(n.String())
	return nil
}
