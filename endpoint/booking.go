package endpoint

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

// BookingNotifier is told about every booking the backend accepted.
type BookingNotifier interface {
	BookingConfirmed(appt model.ClinicAppointment, patient model.User)
}

var (
	notifierMu      sync.RWMutex
	bookingNotifier BookingNotifier
)

// SetBookingNotifier installs the notifier used after successful bookings; nil disables it.
func SetBookingNotifier(n BookingNotifier) {
	notifierMu.Lock()
	defer notifierMu.Unlock()
	bookingNotifier = n
}

func getBookingNotifier() BookingNotifier {
	notifierMu.RLock()
	defer notifierMu.RUnlock()
	return bookingNotifier
}

// fillBooking completes a backend reply with the fields that were sent, since
// the backend does not always echo them back.
func fillBooking(appt model.ClinicAppointment, req model.BookingRequest) model.ClinicAppointment {
	if appt.DoctorEmail == "" {
		appt.DoctorEmail = req.DoctorEmail
	}
	if appt.PatientEmail == "" {
		appt.PatientEmail = req.PatientEmail
	}
	if appt.PatientName == "" {
		appt.PatientName = req.PatientName
	}
	if appt.Subject == "" {
		appt.Subject = req.Subject
	}
	if appt.Message == "" {
		appt.Message = req.Message
	}
	if appt.Date == "" {
		appt.Date = req.Date
	}
	if appt.Slot == "" {
		appt.Slot = req.Slot
	}
	return appt
}

// BookAppointment godoc
// @Summary      Book a clinic appointment
// @Description  Books a consultation slot with a doctor for the logged in patient. The patient
// @Description  identity is taken from the session. Slot conflicts are reported by the backend.
// @Tags         Appointments
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body model.BookingForm true "Booking form"
// @Success      200 {object} util.APIResponse{data=model.ClinicAppointment} "Appointment booked"
// @Failure      400 {object} util.APIResponse "Invalid booking form"
// @Failure      401 {object} util.APIResponse "No live session"
// @Failure      403 {object} util.APIResponse "Not a patient"
// @Failure      502 {object} util.APIResponse "Backend failure"
// @Router       /appointments [post]
func BookAppointment(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	var form model.BookingForm
	if !bindJSONOrRespond(c, &form, "Invalid booking form") {
		return
	}
	if err := form.Validate(); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Please choose a doctor, date and slot", Err: err})
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	req := form.Request(user)
	appt, err := client.BookDoctorAppointment(c.Request.Context(), req)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgBookingFailed, Err: err})
		return
	}
	appt = fillBooking(appt, req)

	util.LogBookingCreated(middleware.ActorFrom(c), req)
	if n := getBookingNotifier(); n != nil {
		go n.BookingConfirmed(appt, user)
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  model.MsgBookingSuccess,
		Data: appt,
	})
}
