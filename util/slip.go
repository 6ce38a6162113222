package util

import (
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/otscheduler/portal/model"
)

const slipTitle = "OT Scheduler"

type slipRow struct {
	label, value string
}

func newSlip(heading string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 70, 140)
	pdf.CellFormat(0, 10, slipTitle, "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, heading, "1", 1, "C", false, 0, "")
	pdf.Ln(2)
	return pdf
}

func addSlipRows(pdf *gofpdf.Fpdf, rows []slipRow) {
	pdf.SetFont("Arial", "", 10)
	for _, r := range rows {
		value := r.value
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		pdf.CellFormat(55, 9, r.label, "1", 0, "", false, 0, "")
		pdf.CellFormat(0, 9, value, "1", 1, "", false, 0, "")
	}
}

func finishSlip(pdf *gofpdf.Fpdf, w io.Writer, generated time.Time) error {
	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.CellFormat(0, 8, "Generated "+generated.Format("02 Jan 2006 15:04"), "", 1, "R", false, 0, "")
	return pdf.Output(w)
}

// RenderOTSlip writes a printable PDF summary of an OT appointment.
func RenderOTSlip(w io.Writer, a model.OTAppointment, generated time.Time) error {
	pdf := newSlip("Operating Theatre Appointment")
	addSlipRows(pdf, []slipRow{
		{"Appointment", string(a.ID)},
		{"Patient", a.PatientName},
		{"Patient email", a.PatientEmail},
		{"Case type", a.CaseType},
		{"OT number", a.OTNumber},
		{"Date", a.Date},
		{"Slot", a.Slot},
		{"Surgeon", a.Doctor},
		{"Assistant doctor", a.AssistantDoctor},
		{"Nurses", strings.Join(a.Nurses, ", ")},
		{"Status", a.Status},
	})
	if len(a.Reports) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, "Reports", "", 1, "", false, 0, "")
		rows := make([]slipRow, 0, len(a.Reports))
		for _, r := range a.Reports {
			rows = append(rows, slipRow{r.FileName, r.UploadedAt})
		}
		addSlipRows(pdf, rows)
	}
	return finishSlip(pdf, w, generated)
}

// RenderBookingSlip writes the confirmation PDF for a consultation booking.
func RenderBookingSlip(w io.Writer, a model.ClinicAppointment, generated time.Time) error {
	pdf := newSlip("Consultation Booking")
	addSlipRows(pdf, []slipRow{
		{"Booking", string(a.ID)},
		{"Patient", a.PatientName},
		{"Patient email", a.PatientEmail},
		{"Doctor", a.DoctorName},
		{"Doctor email", a.DoctorEmail},
		{"Subject", a.Subject},
		{"Date", a.Date},
		{"Slot", a.Slot},
		{"Status", a.Status},
	})
	if strings.TrimSpace(a.Message) != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, a.Message, "", "L", false)
	}
	return finishSlip(pdf, w, generated)
}
