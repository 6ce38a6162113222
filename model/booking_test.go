package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingForm_Validate(t *testing.T) {
	f := BookingForm{DoctorEmail: "doc@example.com", Date: "2026-11-02", Slot: "2:30 PM - 3:00 PM"}
	assert.NoError(t, f.Validate())

	missingDate := f
	missingDate.Date = ""
	assert.ErrorIs(t, missingDate.Validate(), ErrMissingField)

	badSlot := f
	badSlot.Slot = "4:00 AM - 4:30 AM"
	assert.ErrorIs(t, badSlot.Validate(), ErrUnknownSlot)
}

func TestBookingForm_RequestUsesSessionIdentity(t *testing.T) {
	f := BookingForm{DoctorEmail: "doc@example.com", Subject: "Checkup", Date: "2026-11-02", Slot: "9:00 AM - 9:30 AM"}
	req := f.Request(User{Email: "pat@example.com", Username: "Pat"})
	assert.Equal(t, "pat@example.com", req.PatientEmail)
	assert.Equal(t, "Pat", req.PatientName)
	assert.Equal(t, "Checkup", req.Subject)
}

func TestEditForm_RoundTripsNurses(t *testing.T) {
	a := OTAppointment{OTNumber: "OT-1", Nurses: []string{"Ann", "Bea"}}
	form := EditFormFrom(a)
	assert.Equal(t, "Ann, Bea", form.Nurses)

	form.Nurses = "Ann, Bea,, Cy "
	edit := form.Edit()
	assert.Equal(t, []string{"Ann", "Bea", "Cy"}, edit.Nurses)
	assert.Equal(t, "OT-1", edit.OTNumber)
}

func TestSplitNurses_Empty(t *testing.T) {
	assert.Equal(t, []string{}, SplitNurses(" , ,"))
}
