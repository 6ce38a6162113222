package middleware

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otscheduler/portal/model"
	"github.com/otscheduler/portal/util"
	"gorm.io/gorm"
)

const (
	// SessionHeader and SessionCookie carry the signed session token.
	SessionHeader = "session-token"
	SessionCookie = "session-token"

	sessionUserKey = "session_user"
	tokenIDKey     = "session_token_id"
)

var (
	errSessionMismatch = errors.New("session token does not match stored session")
	errNoDatabase      = errors.New("database connection not available")
)

// SessionToken extracts the raw token from the header, falling back to the cookie.
func SessionToken(c *gin.Context) string {
	if t := strings.TrimSpace(c.GetHeader(SessionHeader)); t != "" {
		return t
	}
	if t, err := c.Cookie(SessionCookie); err == nil {
		return t
	}
	return ""
}

// resolveSession turns a raw token into the stored session record. Redis is
// tried first; the database row is the fallback.
func resolveSession(c *gin.Context, token string) (model.User, string, error) {
	claims, err := util.ParseSessionToken(token)
	if err != nil {
		return model.User{}, "", err
	}

	user, found, err := util.LoadSession(c.Request.Context(), claims.ID)
	if err != nil {
		log.Printf("session cache lookup failed, using database: %v", err)
	}
	if !found {
		db := GetDB(c)
		if db == nil {
			return model.User{}, "", errNoDatabase
		}
		row, err := model.FindActiveSession(db, claims.ID, time.Now())
		if err != nil {
			return model.User{}, "", err
		}
		if user, err = row.SessionUser(); err != nil {
			return model.User{}, "", err
		}
	}
	if !strings.EqualFold(user.Email, claims.Email) {
		return model.User{}, "", errSessionMismatch
	}
	return user, claims.ID, nil
}

// ValidateLoginToken requires a live session and stores its record in the context.
func ValidateLoginToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: model.MsgSessionMissing,
				Err: fmt.Errorf("session token not provided"),
			})
			c.Abort()
			return
		}

		user, tokenID, err := resolveSession(c, token)
		switch {
		case errors.Is(err, errNoDatabase):
			util.CallServerError(c, util.APIErrorParams{Msg: "Database connection not available", Err: err})
			c.Abort()
			return
		case err != nil:
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("session rejected: %v", err)
			}
			util.CallUserNotAuthorized(c, util.APIErrorParams{Msg: model.MsgSessionMissing, Err: err})
			c.Abort()
			return
		}

		c.Set(sessionUserKey, user)
		c.Set(tokenIDKey, tokenID)
		c.Next()
	}
}

// OptionalSession loads the session when one is presented and valid, and
// otherwise lets the request through untouched.
func OptionalSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := SessionToken(c); token != "" {
			if user, tokenID, err := resolveSession(c, token); err == nil {
				c.Set(sessionUserKey, user)
				c.Set(tokenIDKey, tokenID)
			}
		}
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles. It must run
// after ValidateLoginToken.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GetSessionUser(c)
		if !ok {
			util.CallUserNotAuthorized(c, util.APIErrorParams{
				Msg: model.MsgSessionMissing,
				Err: fmt.Errorf("no session in context"),
			})
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		util.LogUnauthorizedAccess(ActorFrom(c), c.Request.URL.Path, fmt.Sprintf("role %s not allowed", user.Role))
		util.CallUserForbidden(c, util.APIErrorParams{
			Msg: "You do not have access to this page",
			Err: fmt.Errorf("role %q not permitted", user.Role),
		})
		c.Abort()
	}
}

// GetSessionUser returns the session record stored by ValidateLoginToken.
func GetSessionUser(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(sessionUserKey)
	if !ok {
		return model.User{}, false
	}
	u, ok := v.(model.User)
	return u, ok
}

// GetTokenID returns the id of the current session.
func GetTokenID(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// ActorFrom describes the caller for security logging.
func ActorFrom(c *gin.Context) util.Actor {
	user, _ := GetSessionUser(c)
	return util.Actor{User: user, IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
