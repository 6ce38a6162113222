package endpoint

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

// StatusChangeRequest selects the OT appointment by its patient. Without a
// patient email the active appointment's patient is used.
type StatusChangeRequest struct {
	PatientEmail string `json:"patientEmail" example:"patient@example.com"`
	Status       string `json:"status" binding:"required" example:"Completed"`
}

var errNoActiveAppointment = errors.New("no OT appointment to act on")

// activePatient returns the patient of the first OT appointment of the surgeon.
func activePatient(ctx context.Context, client *backend.Client, doctorEmail string) (string, error) {
	ot, err := client.DoctorOT(ctx, doctorEmail)
	if err != nil {
		return "", err
	}
	if len(ot) == 0 || ot[0].PatientEmail == "" {
		return "", errNoActiveAppointment
	}
	return ot[0].PatientEmail, nil
}

// respondRefreshed refetches the surgeon's OT list and answers with msg.
func respondRefreshed(c *gin.Context, client *backend.Client, user model.User, msg string) {
	ctx := c.Request.Context()
	ot, err := client.DoctorOT(ctx, user.Email)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgDoctorDataFailed, Err: err})
		return
	}
	clinic := clinicList(func() ([]model.ClinicAppointment, error) {
		return client.DoctorAppointments(ctx, user.Email)
	}, user.Email)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  msg,
		Data: doctorDashboard(ot, clinic),
	})
}

// UpdateStatus godoc
// @Summary      Change an OT appointment status
// @Description  Sets the status of the appointment between the logged in surgeon and a patient,
// @Description  then returns the refreshed doctor dashboard.
// @Tags         OT
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        request body StatusChangeRequest true "Patient and new status"
// @Success      200 {object} util.APIResponse{data=DoctorDashboardData} "Status updated"
// @Failure      400 {object} util.APIResponse "Unknown status or no appointment"
// @Failure      502 {object} util.APIResponse "Failed to update status"
// @Router       /ot/status [put]
func UpdateStatus(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	var req StatusChangeRequest
	if !bindJSONOrRespond(c, &req, "Invalid status request") {
		return
	}
	if !util.Contains(req.Status, model.StatusOptions) {
		util.CallUserError(c, util.APIErrorParams{
			Msg: fmt.Sprintf("Status must be one of %s", strings.Join(model.StatusOptions, ", ")),
			Err: fmt.Errorf("unknown status %q", req.Status),
		})
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	patientEmail := strings.TrimSpace(req.PatientEmail)
	if patientEmail == "" {
		var err error
		patientEmail, err = activePatient(ctx, client, user.Email)
		if errors.Is(err, errNoActiveAppointment) {
			util.CallUserError(c, util.APIErrorParams{Msg: model.MsgStatusUpdateFailed, Err: err})
			return
		}
		if err != nil {
			util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgDoctorDataFailed, Err: err})
			return
		}
	}

	if err := client.UpdateAppointmentStatus(ctx, user.Email, patientEmail, req.Status); err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgStatusUpdateFailed, Err: err})
		return
	}
	util.LogStatusChanged(middleware.ActorFrom(c), patientEmail, req.Status)
	respondRefreshed(c, client, user, fmt.Sprintf("Status updated to %s", req.Status))
}

// EditAppointment godoc
// @Summary      Edit an OT appointment
// @Description  Nurses are given as one comma separated string and sent as a list.
// @Tags         OT
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path string true "Appointment ID"
// @Param        request body model.AppointmentEditForm true "Editable fields"
// @Success      200 {object} util.APIResponse{data=DoctorDashboardData} "Appointment updated"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      502 {object} util.APIResponse "Failed to update appointment"
// @Router       /ot/appointments/{id} [patch]
func EditAppointment(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		util.CallUserError(c, util.APIErrorParams{Msg: "Appointment ID is required", Err: fmt.Errorf("empty id")})
		return
	}
	var form model.AppointmentEditForm
	if !bindJSONOrRespond(c, &form, "Invalid request payload") {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	edit := form.Edit()
	if err := client.EditAppointment(c.Request.Context(), id, edit); err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgEditFailed, Err: err})
		return
	}
	util.LogAppointmentEdited(middleware.ActorFrom(c), id, edit)
	respondRefreshed(c, client, user, "Appointment updated")
}

// UploadReport godoc
// @Summary      Upload a report
// @Description  Uploads a file for a patient of the logged in surgeon. Without patientEmail the
// @Description  active appointment's patient receives it.
// @Tags         OT
// @Accept       mpfd
// @Produce      json
// @Security     SessionToken
// @Param        report formData file true "Report file"
// @Param        patientEmail formData string false "Patient email"
// @Success      200 {object} util.APIResponse{data=DoctorDashboardData} "Report uploaded"
// @Failure      400 {object} util.APIResponse "Missing file or no appointment"
// @Failure      502 {object} util.APIResponse "Upload failed"
// @Router       /ot/reports [post]
func UploadReport(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	header, err := c.FormFile("report")
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Please choose a report file", Err: err})
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	patientEmail := strings.TrimSpace(c.PostForm("patientEmail"))
	if patientEmail == "" {
		patientEmail, err = activePatient(ctx, client, user.Email)
		if errors.Is(err, errNoActiveAppointment) {
			util.CallUserError(c, util.APIErrorParams{Msg: model.MsgUploadFailed, Err: err})
			return
		}
		if err != nil {
			util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgDoctorDataFailed, Err: err})
			return
		}
	}

	f, err := header.Open()
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: model.MsgUploadFailed, Err: err})
		return
	}
	defer f.Close()

	if err := client.UploadReport(ctx, user.Email, patientEmail, header.Filename, f); err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgUploadFailed, Err: err})
		return
	}
	util.LogReportUploaded(middleware.ActorFrom(c), patientEmail, header.Filename)
	respondRefreshed(c, client, user, "Report uploaded successfully")
}

// AppointmentSlip godoc
// @Summary      Download an OT appointment slip
// @Description  Renders a PDF summary of one of the logged in patient's OT appointments.
// @Tags         OT
// @Produce      application/pdf
// @Security     SessionToken
// @Param        id path string true "Appointment ID"
// @Success      200 {file} binary "PDF slip"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Failure      502 {object} util.APIResponse "Failed to fetch OT data"
// @Router       /ot/appointments/{id}/slip [get]
func AppointmentSlip(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	id := c.Param("id")
	bundle, err := client.PatientOT(c.Request.Context(), user.Email)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgOTDataFailed, Err: err})
		return
	}
	appt, found := model.FindOT(bundle.Appointments, id)
	if !found {
		util.CallErrorNotFound(c, util.APIErrorParams{Msg: "Appointment not found", Err: fmt.Errorf("no OT appointment %q", id)})
		return
	}

	var buf bytes.Buffer
	if err := util.RenderOTSlip(&buf, appt, time.Now()); err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to render slip", Err: err})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=ot-appointment-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
