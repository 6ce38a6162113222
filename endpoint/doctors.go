package endpoint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

// DoctorEntry is a directory listing row.
type DoctorEntry struct {
	model.Account
	DepartmentName string `json:"departmentName"`
}

func doctorEntry(a model.Account) DoctorEntry {
	return DoctorEntry{Account: a, DepartmentName: a.DirectoryName()}
}

// ListDoctors godoc
// @Summary      List doctors
// @Description  Returns the doctor directory, optionally filtered by department. The listing is
// @Description  cached in memory for a short time.
// @Tags         Doctors
// @Produce      json
// @Param        department query string false "Department name (case insensitive)"
// @Success      200 {object} util.APIResponse{data=[]DoctorEntry} "Doctors retrieved"
// @Failure      502 {object} util.APIResponse "Backend failure"
// @Router       /doctors [get]
func ListDoctors(c *gin.Context) {
	doctors, ok := util.CachedDoctors()
	if !ok {
		client, ok := getBackendOrRespond(c)
		if !ok {
			return
		}
		var err error
		doctors, err = client.ListDoctors(c.Request.Context())
		if err != nil {
			util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgDoctorsFailed, Err: err})
			return
		}
		util.CacheDoctors(doctors)
	}

	department := strings.TrimSpace(c.Query("department"))
	entries := make([]DoctorEntry, 0, len(doctors))
	for _, d := range doctors {
		entry := doctorEntry(d)
		if department != "" && !strings.EqualFold(entry.DepartmentName, department) && !strings.EqualFold(d.Department, department) {
			continue
		}
		entries = append(entries, entry)
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  fmt.Sprintf("%d doctors found", len(entries)),
		Data: entries,
	})
}

// GetDoctor godoc
// @Summary      Doctor detail
// @Tags         Doctors
// @Produce      json
// @Param        email path string true "Doctor email"
// @Success      200 {object} util.APIResponse{data=DoctorEntry} "Doctor retrieved"
// @Failure      404 {object} util.APIResponse "Doctor not found"
// @Failure      502 {object} util.APIResponse "Backend failure"
// @Router       /doctors/{email} [get]
func GetDoctor(c *gin.Context) {
	email := strings.TrimSpace(c.Param("email"))
	doctor, ok := util.CachedDoctor(email)
	if !ok {
		client, ok := getBackendOrRespond(c)
		if !ok {
			return
		}
		var err error
		doctor, err = client.GetUser(c.Request.Context(), email)
		if backend.StatusCode(err) == http.StatusNotFound {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: model.MsgDoctorNotFound, Err: err})
			return
		}
		if err != nil {
			util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgDoctorNotFound, Err: err})
			return
		}
		if doctor.Role != model.RoleDoctor {
			util.CallErrorNotFound(c, util.APIErrorParams{Msg: model.MsgDoctorNotFound, Err: fmt.Errorf("%s is not a doctor", email)})
			return
		}
		util.CacheDoctor(doctor)
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Doctor found",
		Data: doctorEntry(doctor),
	})
}
