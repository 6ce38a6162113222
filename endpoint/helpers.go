package endpoint

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
	"gorm.io/gorm"
)

func bindJSONOrRespond(c *gin.Context, dst interface{}, msg string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: msg, Err: err})
		return false
	}
	return true
}

func getDBOrRespond(c *gin.Context) (*gorm.DB, bool) {
	db := middleware.GetDB(c)
	if db == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: fmt.Errorf("db is nil")})
		return nil, false
	}
	return db, true
}

func getBackendOrRespond(c *gin.Context) (*backend.Client, bool) {
	client := middleware.GetBackend(c)
	if client == nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Backend client not available", Err: fmt.Errorf("backend client is nil")})
		return nil, false
	}
	return client, true
}

func sessionUserOrRespond(c *gin.Context) (model.User, bool) {
	user, ok := middleware.GetSessionUser(c)
	if !ok {
		util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: model.MsgSessionMissing, Err: fmt.Errorf("no session in context")})
		return model.User{}, false
	}
	return user, true
}

// otView is an OT appointment with its display tone.
type otView struct {
	model.OTAppointment
	StatusTone model.Tone `json:"statusTone"`
}

func otViews(list []model.OTAppointment) []otView {
	views := make([]otView, len(list))
	for i, a := range list {
		views[i] = otView{OTAppointment: a, StatusTone: model.StatusTone(a.Status)}
	}
	return views
}
