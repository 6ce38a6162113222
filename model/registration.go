package model

import (
	"fmt"
	"strings"
)

// MaxProfileImageSize is the largest profile picture the form accepts.
const MaxProfileImageSize = 2 * 1024 * 1024

// RegistrationForm collects the account fields for every role. Only the fields
// belonging to Role are submitted; see Payload.
type RegistrationForm struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Mobile   string `json:"mobile" form:"mobile"`
	Gender   string `json:"gender" form:"gender"`
	Role     Role   `json:"role" form:"role"`

	Department  string `json:"department" form:"department"`
	Experience  string `json:"experience" form:"experience"`
	Designation string `json:"designation" form:"designation"`
	ShiftTime   string `json:"shiftTime" form:"shiftTime"`

	Age                    string `json:"age" form:"age"`
	CaseType               string `json:"caseType" form:"caseType"`
	ConditionName          string `json:"conditionName" form:"conditionName"`
	CaseDescription        string `json:"caseDescription" form:"caseDescription"`
	BloodGroup             string `json:"bloodGroup" form:"bloodGroup"`
	Allergies              string `json:"allergies" form:"allergies"`
	EmergencyContactName   string `json:"emergencyContactName" form:"emergencyContactName"`
	EmergencyContactNumber string `json:"emergencyContactNumber" form:"emergencyContactNumber"`

	ProfileImage     []byte `json:"-" form:"-"`
	ProfileImageName string `json:"-" form:"-"`
}

// NewRegistrationForm returns an empty form with the patient role preselected.
func NewRegistrationForm() *RegistrationForm {
	return &RegistrationForm{Role: RolePatient}
}

// SelectRole switches the form to role and clears the fields that belonged to
// the previous role.
func (f *RegistrationForm) SelectRole(role Role) {
	f.Role = role
	f.Department = ""
	f.Designation = ""
	f.Experience = ""
	f.ShiftTime = ""
	if role != RolePatient {
		f.Age = ""
		f.CaseType = ""
		f.ConditionName = ""
		f.CaseDescription = ""
		f.BloodGroup = ""
		f.Allergies = ""
		f.EmergencyContactName = ""
		f.EmergencyContactNumber = ""
	}
}

// SelectCondition records the patient's condition and fills the department
// (and the case type, which carries the department name) from the lookup table.
func (f *RegistrationForm) SelectCondition(condition string) {
	department := DepartmentForCondition(condition)
	f.ConditionName = condition
	f.CaseType = department
	f.Department = department
}

// AttachProfileImage sets the optional profile picture.
func (f *RegistrationForm) AttachProfileImage(name string, data []byte) error {
	if len(data) >= MaxProfileImageSize {
		return ErrImageTooLarge
	}
	f.ProfileImageName = name
	f.ProfileImage = data
	return nil
}

// Validate checks the fields the form marks as required.
func (f *RegistrationForm) Validate() error {
	required := []struct{ name, value string }{
		{"username", f.Username},
		{"email", f.Email},
		{"password", f.Password},
		{"mobile", f.Mobile},
		{"gender", f.Gender},
		{"role", string(f.Role)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, r.name)
		}
	}
	if !f.Role.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownRole, f.Role)
	}
	if len(f.ProfileImage) >= MaxProfileImageSize {
		return ErrImageTooLarge
	}
	return nil
}

// Payload returns the fields submitted for the form's role: the shared account
// fields plus exactly the role specific ones. Empty values are left out.
func (f *RegistrationForm) Payload() map[string]string {
	fields := map[string]string{
		"username": f.Username,
		"email":    f.Email,
		"password": f.Password,
		"mobile":   f.Mobile,
		"gender":   f.Gender,
		"role":     string(f.Role),
	}

	switch f.Role {
	case RolePatient:
		fields["age"] = f.Age
		fields["caseType"] = f.CaseType
		fields["conditionName"] = f.ConditionName
		fields["caseDescription"] = f.CaseDescription
		fields["bloodGroup"] = f.BloodGroup
		fields["allergies"] = f.Allergies
		fields["emergencyContactName"] = f.EmergencyContactName
		fields["emergencyContactNumber"] = f.EmergencyContactNumber
	case RoleDoctor, RoleAssistantDoctor:
		fields["department"] = f.Department
		fields["experience"] = f.Experience
		fields["designation"] = f.Designation
	case RoleNurse:
		fields["department"] = f.Department
		fields["shiftTime"] = f.ShiftTime
		fields["experience"] = f.Experience
	}

	for k, v := range fields {
		if strings.TrimSpace(v) == "" {
			delete(fields, k)
		}
	}
	return fields
}

// SuccessMessage is the notification shown after the backend accepts the form.
func (f *RegistrationForm) SuccessMessage() string {
	switch f.Role {
	case RolePatient:
		return "Patient registered successfully. You can now book OT slots."
	case RoleDoctor, RoleAssistantDoctor:
		return "Doctor registered successfully. You will now be considered for OT scheduling."
	case RoleNurse:
		return "Nurse registered successfully. You will be auto-assigned to OTs as needed."
	case RoleAdmin:
		return "Admin registered successfully."
	default:
		return "User registered successfully."
	}
}
