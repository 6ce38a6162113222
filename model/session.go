package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Session is the durable copy of a portal login. Redis holds the hot copy; the
// row is what survives a Redis restart and what the sweeper expires.
type Session struct {
	gorm.Model
	TokenID   string         `json:"token_id" gorm:"column:token_id;type:varchar(64);uniqueIndex"`
	UserID    string         `json:"user_id" gorm:"column:user_id;type:varchar(64);index"`
	Email     string         `json:"email" gorm:"column:email;type:varchar(191);index"`
	Role      Role           `json:"role" gorm:"column:role;type:varchar(32)"`
	UserData  datatypes.JSON `json:"user_data" gorm:"column:user_data"`
	ExpiresAt time.Time      `json:"expires_at" gorm:"column:expires_at;index"`
	ClientIP  string         `json:"client_ip" gorm:"column:client_ip;type:varchar(45)"`
	Browser   string         `json:"browser" gorm:"column:browser;type:varchar(512)"`
}

// SessionInfo groups what is known about a login when its session is recorded.
type SessionInfo struct {
	TokenID  string
	User     User
	Expires  time.Time
	ClientIP string
	Browser  string
}

// NewSession serializes the user record into a Session row.
func NewSession(info SessionInfo) (Session, error) {
	blob, err := json.Marshal(info.User)
	if err != nil {
		return Session{}, fmt.Errorf("encode session user: %w", err)
	}
	return Session{
		TokenID:   info.TokenID,
		UserID:    info.User.ID,
		Email:     info.User.Email,
		Role:      info.User.Role,
		UserData:  datatypes.JSON(blob),
		ExpiresAt: info.Expires,
		ClientIP:  info.ClientIP,
		Browser:   info.Browser,
	}, nil
}

// SessionUser decodes the stored user record.
func (s Session) SessionUser() (User, error) {
	var u User
	if err := json.Unmarshal(s.UserData, &u); err != nil {
		return User{}, fmt.Errorf("decode session user: %w", err)
	}
	return u, nil
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// CreateSession persists a session row.
func CreateSession(db *gorm.DB, s *Session) error {
	return db.Create(s).Error
}

// FindActiveSession loads the unexpired session for tokenID.
func FindActiveSession(db *gorm.DB, tokenID string, now time.Time) (Session, error) {
	var s Session
	err := db.Where("token_id = ? AND expires_at > ?", tokenID, now).First(&s).Error
	return s, err
}

// DeleteSession soft-deletes the session for tokenID. Deleting a missing
// session is not an error.
func DeleteSession(db *gorm.DB, tokenID string) error {
	return db.Where("token_id = ?", tokenID).Delete(&Session{}).Error
}

// PurgeExpiredSessions soft-deletes every session expired at now and returns
// the purged rows so callers can clean up the hot store.
func PurgeExpiredSessions(db *gorm.DB, now time.Time) ([]Session, error) {
	var expired []Session
	if err := db.Where("expires_at <= ?", now).Find(&expired).Error; err != nil {
		return nil, err
	}
	if len(expired) == 0 {
		return nil, nil
	}
	ids := make([]uint, len(expired))
	for i, s := range expired {
		ids[i] = s.ID
	}
	if err := db.Delete(&Session{}, ids).Error; err != nil {
		return nil, err
	}
	return expired, nil
}
