package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/backend"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Error   string      `json:"error"`
	Msg     string      `json:"msg"`
	Data    interface{} `json:"data"`
}

type APIErrorParams struct {
	Msg string
	Err error
}

type APISuccessParams struct {
	Msg  string
	Data interface{}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Contains function is to check item whether is exist or not in a list and will return bool
func Contains(d string, dl []string) bool {
	for _, v := range dl {
		if v == d {
			return true
		}
	}
	return false
}

// CallErrorNotFound is for return API response not found
func CallErrorNotFound(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusNotFound, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallUserError is for return error from user side
func CallUserError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallServerError is for return API response server error
func CallServerError(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     params.Msg,
		Data:    map[string]interface{}{},
	})
}

// CallBackendError reports a failed backend call. The backend's own message
// wins over params.Msg; 4xx statuses are passed through, anything else is 502.
func CallBackendError(c *gin.Context, params APIErrorParams) {
	status := http.StatusBadGateway
	if code := backend.StatusCode(params.Err); code >= 400 && code < 500 {
		status = code
	}
	c.JSON(status, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     backend.UserMessage(params.Err, params.Msg),
		Data:    map[string]interface{}{},
	})
}

// CallSuccessOK is for return API response with status code 200, you need to specify msg, and data as function parameter
func CallSuccessOK(c *gin.Context, params APISuccessParams) {
	c.JSON(http.StatusOK, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallUserFound answers with 303 and a Location header, the envelope still
// carries the target so API clients need not follow the redirect.
func CallUserFound(c *gin.Context, location string, params APISuccessParams) {
	c.Header("Location", location)
	c.JSON(http.StatusSeeOther, APIResponse{
		Success: true,
		Msg:     params.Msg,
		Data:    params.Data,
	})
}

// CallUserNotAuthorized is for return API response with status code 401
func CallUserNotAuthorized(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusUnauthorized, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     params.Msg,
	})
}

// CallUserForbidden is for return API response with status code 403
func CallUserForbidden(c *gin.Context, params APIErrorParams) {
	c.JSON(http.StatusForbidden, APIResponse{
		Success: false,
		Error:   errText(params.Err),
		Msg:     params.Msg,
	})
}

// NormalizeName normalizes a name by trimming leading/trailing whitespace
// and collapsing multiple internal spaces into single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
