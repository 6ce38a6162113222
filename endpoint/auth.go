package endpoint

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/config"
	"github.com/otscheduler/portal/middleware"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"doctor@example.com"`
	Password string `json:"password" binding:"required" example:"secret"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	User      model.User `json:"user"`
	Redirect  string     `json:"redirect" example:"/doctor-home"`
	ExpiresAt time.Time  `json:"expires_at"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type SessionResponse struct {
	User           model.User `json:"user"`
	Redirect       string     `json:"redirect"`
	ActiveSessions int64      `json:"active_sessions"`
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

// readRegistrationForm binds either a multipart form (with an optional
// profileImage file) or a JSON body.
func readRegistrationForm(c *gin.Context) (*model.RegistrationForm, error) {
	form := model.NewRegistrationForm()
	if !isMultipart(c) {
		if err := c.ShouldBindJSON(form); err != nil {
			return nil, err
		}
		return form, nil
	}

	if err := c.ShouldBind(form); err != nil {
		return nil, err
	}
	header, err := c.FormFile("profileImage")
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		return nil, err
	}
	if header.Size >= model.MaxProfileImageSize {
		return nil, model.ErrImageTooLarge
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, model.MaxProfileImageSize))
	if err != nil {
		return nil, err
	}
	if err := form.AttachProfileImage(header.Filename, data); err != nil {
		return nil, err
	}
	return form, nil
}

// Register godoc
// @Summary      Register an account
// @Description  Multipart requests (optionally with a profileImage file) go to the backend's multipart
// @Description  registration; JSON bodies go to its JSON registration. Only the role's fields are sent.
// @Tags         Authentication
// @Accept       json,mpfd
// @Produce      json
// @Param        request body model.RegistrationForm true "Registration form"
// @Success      200 {object} util.APIResponse "Account registered"
// @Failure      400 {object} util.APIResponse "Invalid form"
// @Failure      502 {object} util.APIResponse "Backend rejected the registration"
// @Router       /auth/register [post]
func Register(c *gin.Context) {
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	form, err := readRegistrationForm(c)
	if errors.Is(err, model.ErrImageTooLarge) {
		util.CallUserError(c, util.APIErrorParams{Msg: model.MsgImageTooLarge, Err: err})
		return
	}
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid request payload", Err: err})
		return
	}

	form.Username = util.NormalizeName(form.Username)
	form.Email = strings.TrimSpace(form.Email)
	if form.Role == model.RolePatient && form.ConditionName != "" && form.CaseType == "" {
		form.SelectCondition(form.ConditionName)
	}
	if err := form.Validate(); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Please fill in all required fields", Err: err})
		return
	}

	if isMultipart(c) {
		err = client.Register(c.Request.Context(), form)
	} else {
		err = client.RegisterJSON(c.Request.Context(), form)
	}
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgRegisterFailed, Err: err})
		return
	}

	util.LogSignupSuccess(form.Email, form.Role, c.ClientIP(), c.Request.UserAgent())
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  form.SuccessMessage(),
		Data: map[string]string{"next": "login"},
	})
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates against the backend and opens a portal session. The signed session
// @Description  token is returned in the body, the session-token header and an HttpOnly cookie.
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login credentials"
// @Success      200 {object} util.APIResponse{data=LoginResponse} "Login successful"
// @Failure      400 {object} util.APIResponse "Invalid request payload"
// @Failure      502 {object} util.APIResponse "Backend failure or invalid user data"
// @Router       /auth/login [post]
func Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSONOrRespond(c, &req, "Invalid request payload") {
		return
	}
	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	ip, agent := c.ClientIP(), c.Request.UserAgent()
	account, err := client.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		util.LogLoginFailure(req.Email, ip, agent, err.Error())
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgLoginFailed, Err: err})
		return
	}
	user, err := account.SessionUser()
	if err != nil {
		util.LogLoginFailure(req.Email, ip, agent, "invalid user data")
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgInvalidUserData, Err: err})
		return
	}

	ttl := config.LoadConfig().SessionTTL
	expires := time.Now().Add(ttl)
	tokenID := util.NewTokenID()
	token, err := util.IssueSessionToken(tokenID, user, expires)
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Could not generate token", Err: err})
		return
	}

	row, err := model.NewSession(model.SessionInfo{TokenID: tokenID, User: user, Expires: expires, ClientIP: ip, Browser: agent})
	if err == nil {
		err = model.CreateSession(db, &row)
	}
	if err != nil {
		util.LogLoginFailure(req.Email, ip, agent, "session creation failed")
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to record session", Err: err})
		return
	}
	if err := util.StoreSession(c.Request.Context(), tokenID, user, ttl); err != nil {
		log.Printf("session cache write failed: %v", err)
	}

	setSessionCookie(c, token, ttl)
	c.Header(middleware.SessionHeader, token)
	util.LogLoginSuccess(util.Actor{User: user, IP: ip, UserAgent: agent})
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: model.MsgLoginSuccess,
		Data: LoginResponse{
			Token:     token,
			User:      user,
			Redirect:  user.Role.LandingPath(),
			ExpiresAt: expires,
		},
	})
}

func setSessionCookie(c *gin.Context, token string, ttl time.Duration) {
	secure := config.LoadConfig().GinMode == gin.ReleaseMode
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, int(ttl.Seconds()), "/", "", secure, true)
}

// ForgotPassword godoc
// @Summary      Request a password reset link
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request body ForgotPasswordRequest true "Account email"
// @Success      200 {object} util.APIResponse "Reset link sent"
// @Failure      502 {object} util.APIResponse "Backend failure"
// @Router       /auth/forgot-password [post]
func ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSONOrRespond(c, &req, "Please enter a valid email") {
		return
	}
	client, ok := getBackendOrRespond(c)
	if !ok {
		return
	}

	msg, err := client.ForgotPassword(c.Request.Context(), req.Email)
	if err != nil {
		util.CallBackendError(c, util.APIErrorParams{Msg: model.MsgResetLinkFailed, Err: err})
		return
	}
	if msg == "" {
		msg = model.MsgResetLinkSent
	}
	util.CallSuccessOK(c, util.APISuccessParams{Msg: msg})
}

// Logout godoc
// @Summary      Log out
// @Description  Ends the presented session, clears the cookie and redirects to the home page.
// @Description  Logging out without a live session is not an error.
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      303 {object} util.APIResponse "Logged out, redirect to /"
// @Failure      500 {object} util.APIResponse "Session could not be deleted"
// @Router       /auth/logout [post]
func Logout(c *gin.Context) {
	if tokenID, ok := middleware.GetTokenID(c); ok {
		user, _ := middleware.GetSessionUser(c)
		// Cache before row: a Redis hit is trusted without checking the database.
		if err := util.RemoveSession(c.Request.Context(), tokenID, user.Email); err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
			return
		}
		if db := middleware.GetDB(c); db != nil {
			if err := model.DeleteSession(db, tokenID); err != nil {
				util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete session", Err: err})
				return
			}
		}
		util.LogLogout(middleware.ActorFrom(c))
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
	util.CallUserFound(c, model.HomePath, util.APISuccessParams{
		Msg:  model.MsgLogoutSuccess,
		Data: map[string]string{"redirect": model.HomePath},
	})
}

// CurrentSession godoc
// @Summary      Current session
// @Tags         Authentication
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=SessionResponse}
// @Failure      401 {object} util.APIResponse "No live session"
// @Router       /auth/session [get]
func CurrentSession(c *gin.Context) {
	user, ok := sessionUserOrRespond(c)
	if !ok {
		return
	}
	active, err := util.CountUserSessions(c.Request.Context(), user.Email)
	if err != nil {
		log.Printf("session count failed: %v", err)
	}
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: fmt.Sprintf("Signed in as %s", user.Role.Label()),
		Data: SessionResponse{
			User:           user,
			Redirect:       user.Role.LandingPath(),
			ActiveSessions: active,
		},
	})
}
