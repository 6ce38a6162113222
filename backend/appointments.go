package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/otscheduler/portal/model"
)

// BookDoctorAppointment books a consultation slot and returns the stored booking.
func (c *Client) BookDoctorAppointment(ctx context.Context, req model.BookingRequest) (model.ClinicAppointment, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, c.path("ot", "appointments", "doctor"), req, &raw); err != nil {
		return model.ClinicAppointment{}, err
	}
	var reply struct {
		Appointment *model.ClinicAppointment `json:"appointment"`
	}
	if err := decode(raw, &reply); err == nil && reply.Appointment != nil {
		return *reply.Appointment, nil
	}
	var booked model.ClinicAppointment
	if err := decode(raw, &booked); err != nil {
		return model.ClinicAppointment{}, err
	}
	return booked, nil
}

// DoctorOT returns the OT appointments the doctor is assigned to.
func (c *Client) DoctorOT(ctx context.Context, email string) ([]model.OTAppointment, error) {
	var reply struct {
		Success bool                  `json:"success"`
		Message string                `json:"message"`
		Data    []model.OTAppointment `json:"data"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, c.path("ot", "doctor", email), nil, &reply); err != nil {
		return nil, err
	}
	if !reply.Success {
		return nil, &APIError{Status: http.StatusOK, Message: reply.Message}
	}
	if reply.Data == nil {
		reply.Data = []model.OTAppointment{}
	}
	return reply.Data, nil
}

// PatientOT returns the patient's profile, OT appointments and reports.
func (c *Client) PatientOT(ctx context.Context, email string) (model.PatientBundle, error) {
	var reply struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		model.PatientBundle
	}
	if err := c.sendJSON(ctx, http.MethodGet, c.path("ot", "patient", email), nil, &reply); err != nil {
		return model.PatientBundle{}, err
	}
	if !reply.Success {
		return model.PatientBundle{}, &APIError{Status: http.StatusOK, Message: reply.Message}
	}
	bundle := reply.PatientBundle
	if bundle.Appointments == nil {
		bundle.Appointments = []model.OTAppointment{}
	}
	if bundle.Reports == nil {
		bundle.Reports = []model.Report{}
	}
	return bundle, nil
}

// DoctorAppointments lists the consultation bookings made with the doctor.
func (c *Client) DoctorAppointments(ctx context.Context, email string) ([]model.ClinicAppointment, error) {
	return c.clinicAppointments(ctx, "doctor", email)
}

// PatientAppointments lists the consultation bookings the patient made.
func (c *Client) PatientAppointments(ctx context.Context, email string) ([]model.ClinicAppointment, error) {
	return c.clinicAppointments(ctx, "patient", email)
}

func (c *Client) clinicAppointments(ctx context.Context, who, email string) ([]model.ClinicAppointment, error) {
	var reply struct {
		Appointments []model.ClinicAppointment `json:"appointments"`
	}
	if err := c.sendJSON(ctx, http.MethodGet, c.path("ot", "appointments", who, email), nil, &reply); err != nil {
		return nil, err
	}
	if reply.Appointments == nil {
		reply.Appointments = []model.ClinicAppointment{}
	}
	return reply.Appointments, nil
}

// Profile returns the role specific bundle for email as the backend shaped it.
func (c *Client) Profile(ctx context.Context, role model.Role, email string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, http.MethodGet, c.path("ot", string(role), email), nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// UpdateAppointmentStatus sets the status of the OT appointment between a
// doctor and a patient.
func (c *Client) UpdateAppointmentStatus(ctx context.Context, doctorEmail, patientEmail, status string) error {
	target := c.path("ot", "appointments", "status", doctorEmail, patientEmail)
	return c.sendJSON(ctx, http.MethodPut, target, model.StatusUpdate{Status: status}, nil)
}

// EditAppointment patches the editable fields of an OT appointment.
func (c *Client) EditAppointment(ctx context.Context, id string, edit model.AppointmentEdit) error {
	return c.sendJSON(ctx, http.MethodPatch, c.path("ot", "appointments", id), edit, nil)
}
