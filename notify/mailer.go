// Package notify mails booking confirmations to patients.
package notify

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

// Sender delivers composed messages. *gomail.Dialer satisfies it.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends booking confirmations. A Mailer without a sender does nothing.
type Mailer struct {
	sender Sender
	from   string
	now    func() time.Time
}

// NewMailer builds a Mailer from the SMTP settings. Without SMTP_HOST the
// returned Mailer is disabled.
func NewMailer(cfg *config.Config) *Mailer {
	if cfg == nil || cfg.SMTPHost == "" {
		return &Mailer{now: time.Now}
	}
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Mailer{
		sender: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
		now:    time.Now,
	}
}

// NewMailerWithSender returns a Mailer that hands messages to s.
func NewMailerWithSender(s Sender, from string) *Mailer {
	return &Mailer{sender: s, from: from, now: time.Now}
}

// Enabled reports whether the Mailer will actually send anything.
func (m *Mailer) Enabled() bool {
	return m != nil && m.sender != nil
}

func confirmationBody(appt model.ClinicAppointment, patient model.User) string {
	name := patient.Username
	if name == "" {
		name = appt.PatientName
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	b.WriteString("Your appointment has been booked.\n\n")
	doctor := appt.DoctorName
	if doctor == "" {
		doctor = appt.DoctorEmail
	}
	fmt.Fprintf(&b, "Doctor:  %s\n", doctor)
	fmt.Fprintf(&b, "Date:    %s\n", appt.Date)
	fmt.Fprintf(&b, "Slot:    %s\n", appt.Slot)
	if appt.Subject != "" {
		fmt.Fprintf(&b, "Subject: %s\n", appt.Subject)
	}
	if appt.Status != "" {
		fmt.Fprintf(&b, "Status:  %s\n", appt.Status)
	}
	b.WriteString("\nThe booking slip is attached.\n")
	return b.String()
}

// SendBookingConfirmation mails the confirmation with the booking slip attached.
func (m *Mailer) SendBookingConfirmation(appt model.ClinicAppointment, patient model.User) error {
	if !m.Enabled() {
		return nil
	}
	to := patient.Email
	if to == "" {
		to = appt.PatientEmail
	}
	if to == "" {
		return fmt.Errorf("booking %s has no patient email", appt.ID)
	}

	var slip bytes.Buffer
	if err := util.RenderBookingSlip(&slip, appt, m.now()); err != nil {
		return fmt.Errorf("render booking slip: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Appointment confirmed for %s", appt.Date))
	msg.SetBody("text/plain", confirmationBody(appt, patient))
	msg.Attach("booking-slip.pdf", gomail.SetCopyFunc(func(w io.Writer) error {
		_, err := w.Write(slip.Bytes())
		return err
	}))

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// BookingConfirmed sends the confirmation and logs a failure; a booking never
// fails because its mail could not go out.
func (m *Mailer) BookingConfirmed(appt model.ClinicAppointment, patient model.User) {
	if err := m.SendBookingConfirmation(appt, patient); err != nil {
		log.Printf("booking confirmation for %s not sent: %v", patient.Email, err)
	}
}
