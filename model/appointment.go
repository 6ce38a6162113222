package model

import (
	"encoding/json"
	"strings"
)

// StatusOptions are the transitions a surgeon can pick on the dashboard.
var StatusOptions = []string{"Pending", "Assigned", "Completed", "Cancelled"}

// Tone classifies a free text status for display.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
	ToneDanger  Tone = "danger"
	ToneNeutral Tone = "neutral"
)

// StatusTone maps a server status string to its display tone.
func StatusTone(status string) Tone {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "completed"):
		return ToneSuccess
	case strings.Contains(s, "pending"), strings.Contains(s, "assigned"), strings.Contains(s, "scheduled"):
		return ToneWarning
	case strings.Contains(s, "cancelled"):
		return ToneDanger
	default:
		return ToneNeutral
	}
}

// Report points at a file held by the backend.
type Report struct {
	ID         FlexString `json:"id"`
	FileName   string     `json:"fileName"`
	UploadedBy string     `json:"uploadedBy"`
	UploadedAt string     `json:"uploadedAt"`
	FileURL    string     `json:"fileUrl"`
}

// OTAppointment is an operating theatre booking as the backend reports it.
type OTAppointment struct {
	ID                   FlexString      `json:"id"`
	CaseType             string          `json:"caseType"`
	OTNumber             string          `json:"otNumber"`
	Date                 string          `json:"date"`
	Slot                 string          `json:"slot"`
	Doctor               string          `json:"doctor"`
	DoctorEmail          string          `json:"doctorEmail"`
	AssistantDoctor      string          `json:"assistantDoctor"`
	AssistantDoctorEmail string          `json:"assistantDoctorEmail"`
	Nurses               []string        `json:"nurses"`
	PatientName          string          `json:"patientName"`
	PatientEmail         string          `json:"patientEmail"`
	Status               string          `json:"status"`
	Notes                string          `json:"notes,omitempty"`
	Reports              []Report        `json:"reports"`
	CreatedAt            string          `json:"createdAt,omitempty"`
	OTRoomDetails        json.RawMessage `json:"otRoomDetails,omitempty"`
	AssignmentMetadata   json.RawMessage `json:"assignmentMetadata,omitempty"`
}

// ClinicAppointment is a consultation booked through the doctor booking form.
type ClinicAppointment struct {
	ID           FlexString `json:"id"`
	DoctorEmail  string     `json:"doctorEmail"`
	DoctorName   string     `json:"doctorName,omitempty"`
	PatientEmail string     `json:"patientEmail"`
	PatientName  string     `json:"patientName"`
	Subject      string     `json:"subject"`
	Message      string     `json:"message"`
	Date         string     `json:"date"`
	Slot         string     `json:"slot"`
	Status       string     `json:"status"`
	CreatedAt    string     `json:"createdAt,omitempty"`
}

// PatientBundle is the patient OT view: profile, OT appointments and reports.
type PatientBundle struct {
	Patient      Account         `json:"patient"`
	Appointments []OTAppointment `json:"appointments"`
	Reports      []Report        `json:"reports"`
}

// FindOT returns the appointment with the given id.
func FindOT(list []OTAppointment, id string) (OTAppointment, bool) {
	for _, a := range list {
		if string(a.ID) == id {
			return a, true
		}
	}
	return OTAppointment{}, false
}
