package util

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/otscheduler/portal/model"
)

// ErrNoSigningSecret is returned when JWTSECRET is unset.
var ErrNoSigningSecret = errors.New("session signing secret is not configured")

var (
	jwtSecretByte = []byte(os.Getenv("JWTSECRET"))
	jwtMutex      sync.RWMutex
)

// SessionClaims is the payload of a portal session token. The user record
// itself stays server side; the token only names the session.
type SessionClaims struct {
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

// SetJWTSecret replaces the signing secret. It is safe for concurrent use.
func SetJWTSecret(secret string) {
	jwtMutex.Lock()
	defer jwtMutex.Unlock()
	jwtSecretByte = []byte(secret)
}

// GetJWTSecretByte returns a copy of the current signing secret.
func GetJWTSecretByte() []byte {
	jwtMutex.RLock()
	defer jwtMutex.RUnlock()
	return append([]byte(nil), jwtSecretByte...)
}

// NewTokenID returns a fresh session id.
func NewTokenID() string {
	return uuid.NewString()
}

// IssueSessionToken signs an HS256 token for the session tokenID.
func IssueSessionToken(tokenID string, user model.User, expires time.Time) (string, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return "", ErrNoSigningSecret
	}
	claims := SessionClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseSessionToken verifies signature and expiry and returns the claims.
func ParseSessionToken(token string) (*SessionClaims, error) {
	secret := GetJWTSecretByte()
	if len(secret) == 0 {
		return nil, ErrNoSigningSecret
	}
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("session token has no id")
	}
	return claims, nil
}
