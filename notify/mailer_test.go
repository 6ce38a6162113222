package notify

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/model"
	"github.com/stretchr/testify/assert"
)

type captureSender struct {
	sent []*gomail.Message
	err  error
}

func (s *captureSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return s.err
}

var booking = model.ClinicAppointment{
	ID:           "42",
	DoctorEmail:  "mehta@example.com",
	PatientEmail: "asha@example.com",
	PatientName:  "Asha",
	Subject:      "Chest pain",
	Date:         "2026-11-02",
	Slot:         "9:00 AM - 9:30 AM",
	Status:       "Pending",
}

func TestNewMailer_DisabledWithoutHost(t *testing.T) {
	m := NewMailer(&config.Config{})
	assert.False(t, m.Enabled())
	assert.NoError(t, m.SendBookingConfirmation(booking, model.User{Email: "asha@example.com"}))

	m = NewMailer(&config.Config{SMTPHost: "smtp.example.com", SMTPPort: 587, SMTPUser: "portal@example.com"})
	assert.True(t, m.Enabled())
	assert.Equal(t, "portal@example.com", m.from)
}

func TestSendBookingConfirmation(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(sender, "portal@example.com")
	m.now = func() time.Time { return time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC) }

	err := m.SendBookingConfirmation(booking, model.User{Username: "Asha Rao", Email: "asha@example.com"})
	assert.NoError(t, err)
	if !assert.Len(t, sender.sent, 1) {
		return
	}

	msg := sender.sent[0]
	assert.Equal(t, []string{"asha@example.com"}, msg.GetHeader("To"))
	assert.Equal(t, []string{"portal@example.com"}, msg.GetHeader("From"))
	assert.Equal(t, []string{"Appointment confirmed for 2026-11-02"}, msg.GetHeader("Subject"))

	var raw bytes.Buffer
	_, err = msg.WriteTo(&raw)
	assert.NoError(t, err)
	assert.Contains(t, raw.String(), "Dear Asha Rao,")
	assert.Contains(t, raw.String(), "Slot:    9:00 AM - 9:30 AM")
	assert.Contains(t, raw.String(), `filename="booking-slip.pdf"`)
}

func TestSendBookingConfirmation_FallsBackToBookingEmail(t *testing.T) {
	sender := &captureSender{}
	m := NewMailerWithSender(sender, "portal@example.com")

	assert.NoError(t, m.SendBookingConfirmation(booking, model.User{}))
	assert.Equal(t, []string{"asha@example.com"}, sender.sent[0].GetHeader("To"))

	noEmail := booking
	noEmail.PatientEmail = ""
	assert.Error(t, m.SendBookingConfirmation(noEmail, model.User{}))
}

func TestBookingConfirmed_SwallowsSendErrors(t *testing.T) {
	sender := &captureSender{err: errors.New("connection refused")}
	m := NewMailerWithSender(sender, "portal@example.com")

	assert.NotPanics(t, func() {
		m.BookingConfirmed(booking, model.User{Email: "asha@example.com"})
	})
	assert.Len(t, sender.sent, 1)
	assert.ErrorContains(t, m.SendBookingConfirmation(booking, model.User{Email: "asha@example.com"}), "connection refused")
}
