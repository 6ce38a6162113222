package endpoint

import (
	"encoding/json"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

// DoctorDashboardData is the doctor dashboard view.
type DoctorDashboardData struct {
	OTAppointments      []otView                  `json:"otAppointments"`
	Appointments        []model.ClinicAppointment `json:"appointments"`
	ActiveAppointmentID string                    `json:"activeAppointmentId"`
	StatusOptions       []string                  `json:"statusOptions"`
}

// PatientDashboardData is the patient dashboard view.
type PatientDashboardData struct {
	Patient        model.Account             `json:"patient"`
	OTAppointments []otView                  `json:"otAppointments"`
	Reports        []model.Report            `json:"reports"`
	Appointments   []model.ClinicAppointment `json:"appointments"`
}

func doctorDashboard(ot []model.OTAppointment, clinic []model.ClinicAppointment) DoctorDashboardData {
	data := DoctorDashboardData{
		OTAppointments: otViews(ot),
		Appointments:   clinic,
		StatusOptions:  model.StatusOptions,
	}
	if len(ot) > 0 {
		data.ActiveAppointmentID = string(ot[0].ID)
	}
	return data
}

// clinicList fetches the clinic appointments; a failure degrades to an empty list.
func clinicList(fetch func() ([]model.ClinicAppointment, error), email string) []model.ClinicAppointment {
	list, err := fetch()
	if err != nil {
		log.Printf("clinic appointments for %s unavailable: %v", email, err)
		return []model.ClinicAppointment{}
	}
	if list == nil {
		return []model.ClinicAppointment{}
	}
	return list
}

// DoctorDashboard godoc
// @Summary      Doctor dashboard
// @Description  OT appointments assigned to the logged in surgeon plus their clinic bookings. The
// @Description  first OT appointment is the active one. A failing clinic list is shown as empty.
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=DoctorDashboardData}
// @Failure      401 {object} util.APIResponse "No live session"
// @Failure      403 {object} util.APIResponse "Not a surgeon"
// @Failure      502 {object} util.APIResponse "Failed to fetch doctor data"
// @Router       /dashboard/doctor [get]
func DoctorDashboard(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

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
		Msg:  "Doctor dashboard loaded",
		Data: doctorDashboard(ot, clinic),
	})
}

// PatientDashboard godoc
// @Summary      Patient dashboard
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=PatientDashboardData}
// @Failure      401 {object} util.APIResponse "No live session"
// @Failure      403 {object} util.APIResponse "Not a patient"
// @Failure      502 {object} util.APIResponse "Failed to fetch OT data"
// @Router       /dashboard/patient [get]
func PatientDashboard(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	bundle, err := client.PatientOT(ctx, user.Email)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgOTDataFailed, Err: err})
		return
	}
	clinic := clinicList(func() ([]model.ClinicAppointment, error) {
		return client.PatientAppointments(ctx, user.Email)
	}, user.Email)

	reports := bundle.Reports
	if reports == nil {
		reports = []model.Report{}
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Patient dashboard loaded",
		Data: PatientDashboardData{
			Patient:        bundle.Patient,
			OTAppointments: otViews(bundle.Appointments),
			Reports:        reports,
			Appointments:   clinic,
		},
	})
}

// Profile godoc
// @Summary      Role profile
// @Description  Returns the backend's profile bundle for the logged in user's role, unchanged.
// @Tags         Dashboard
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse
// @Failure      401 {object} util.APIResponse "No live session"
// @Failure      502 {object} util.APIResponse "Backend failure"
// @Router       /profile [get]
func Profile(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	raw, err := client.Profile(c.Request.Context(), user.Role, user.Email)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgProfileFailed, Err: err})
		return
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Profile loaded",
		Data: json.RawMessage(raw),
	})
}
