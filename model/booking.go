package model

import (
	"fmt"
	"strings"
)

// BookingForm is what a patient fills in to book a consultation slot.
type BookingForm struct {
	DoctorEmail string `json:"doctorEmail" form:"doctorEmail"`
	Subject     string `json:"subject" form:"subject"`
	Message     string `json:"message" form:"message"`
	Date        string `json:"date" form:"date"`
	Slot        string `json:"slot" form:"slot"`
}

// BookingRequest is the body sent to the backend; the patient identity comes
// from the session, never from the form.
type BookingRequest struct {
	DoctorEmail  string `json:"doctorEmail"`
	PatientEmail string `json:"patientEmail"`
	PatientName  string `json:"patientName"`
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Date         string `json:"date"`
	Slot         string `json:"slot"`
}

// Validate checks the required inputs. Conflicts with existing bookings are
// left for the backend to reject.
func (f BookingForm) Validate() error {
	if strings.TrimSpace(f.DoctorEmail) == "" {
		return fmt.Errorf("%w: doctorEmail", ErrMissingField)
	}
	if strings.TrimSpace(f.Date) == "" {
		return fmt.Errorf("%w: date", ErrMissingField)
	}
	if strings.TrimSpace(f.Slot) == "" {
		return fmt.Errorf("%w: slot", ErrMissingField)
	}
	if !IsClinicSlot(f.Slot) {
		return fmt.Errorf("%w: %q", ErrUnknownSlot, f.Slot)
	}
	return nil
}

// Request builds the backend body for patient.
func (f BookingForm) Request(patient User) BookingRequest {
	return BookingRequest{
		DoctorEmail:  f.DoctorEmail,
		PatientEmail: patient.Email,
		PatientName:  patient.Username,
		Subject:      f.Subject,
		Message:      f.Message,
		Date:         f.Date,
		Slot:         f.Slot,
	}
}

// StatusUpdate is the body of a status change.
type StatusUpdate struct {
	Status string `json:"status"`
}

// AppointmentEditForm carries the editable OT appointment fields. Nurses is
// typed as one comma separated string.
type AppointmentEditForm struct {
	CaseType             string `json:"caseType" form:"caseType"`
	OTNumber             string `json:"otNumber" form:"otNumber"`
	Date                 string `json:"date" form:"date"`
	Slot                 string `json:"slot" form:"slot"`
	AssistantDoctor      string `json:"assistantDoctor" form:"assistantDoctor"`
	AssistantDoctorEmail string `json:"assistantDoctorEmail" form:"assistantDoctorEmail"`
	Nurses               string `json:"nurses" form:"nurses"`
}

// AppointmentEdit is the PATCH body with nurses as a list.
type AppointmentEdit struct {
	CaseType             string   `json:"caseType"`
	OTNumber             string   `json:"otNumber"`
	Date                 string   `json:"date"`
	Slot                 string   `json:"slot"`
	AssistantDoctor      string   `json:"assistantDoctor"`
	AssistantDoctorEmail string   `json:"assistantDoctorEmail"`
	Nurses               []string `json:"nurses"`
}

// EditFormFrom prefills the edit form from an existing appointment.
func EditFormFrom(a OTAppointment) AppointmentEditForm {
	return AppointmentEditForm{
		CaseType:             a.CaseType,
		OTNumber:             a.OTNumber,
		Date:                 a.Date,
		Slot:                 a.Slot,
		AssistantDoctor:      a.AssistantDoctor,
		AssistantDoctorEmail: a.AssistantDoctorEmail,
		Nurses:               strings.Join(a.Nurses, ", "),
	}
}

// Edit converts the form into the PATCH body.
func (f AppointmentEditForm) Edit() AppointmentEdit {
	return AppointmentEdit{
		CaseType:             f.CaseType,
		OTNumber:             f.OTNumber,
		Date:                 f.Date,
		Slot:                 f.Slot,
		AssistantDoctor:      f.AssistantDoctor,
		AssistantDoctorEmail: f.AssistantDoctorEmail,
		Nurses:               SplitNurses(f.Nurses),
	}
}

// SplitNurses splits a comma separated list, trimming blanks and dropping empties.
func SplitNurses(s string) []string {
	nurses := []string{}
	for _, n := range strings.Split(s, ",") {
		if n = strings.TrimSpace(n); n != "" {
			nurses = append(nurses, n)
		}
	}
	return nurses
}
