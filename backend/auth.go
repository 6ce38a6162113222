package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/otscheduler/portal/model"
)

// Register submits the registration form as multipart data, the way the
// browser form posts it, including the optional profile image.
func (c *Client) Register(ctx context.Context, form *model.RegistrationForm) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	payload := form.Payload()
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := w.WriteField(k, payload[k]); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}

	if len(form.ProfileImage) > 0 {
		name := form.ProfileImageName
		if name == "" {
			name = "profile"
		}
		part, err := w.CreateFormFile("profileImage", name)
		if err != nil {
			return fmt.Errorf("create profile image part: %w", err)
		}
		if _, err := part.Write(form.ProfileImage); err != nil {
			return fmt.Errorf("write profile image: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart body: %w", err)
	}

	_, err := c.send(ctx, request{
		method:      http.MethodPost,
		url:         c.path("user", "register"),
		body:        &buf,
		contentType: w.FormDataContentType(),
	})
	return err
}

// RegisterJSON submits the role payload as JSON to the legacy users endpoint.
// It cannot carry a profile image.
func (c *Client) RegisterJSON(ctx context.Context, form *model.RegistrationForm) error {
	return c.sendJSON(ctx, http.MethodPost, c.path("users", "register"), form.Payload(), nil)
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns the account the backend replied with. The
// reply is either the account itself or an object wrapping it under "user".
// The account is not validated here; see model.Account.SessionUser.
func (c *Client) Login(ctx context.Context, email, password string) (*model.Account, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, c.path("user", "login"), credentials{Email: email, Password: password}, &raw); err != nil {
		return nil, err
	}
	return decodeAccount(raw)
}

func decodeAccount(raw json.RawMessage) (*model.Account, error) {
	if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}
	var wrapped struct {
		User *model.Account `json:"user"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if wrapped.User != nil {
		return wrapped.User, nil
	}
	var account model.Account
	if err := json.Unmarshal(raw, &account); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	return &account, nil
}

// ForgotPassword asks the backend to mail a reset link and returns its message.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var reply struct {
		Message string `json:"message"`
	}
	if err := c.sendJSON(ctx, http.MethodPost, c.path("user", "forgot-password"), map[string]string{"email": email}, &reply); err != nil {
		return "", err
	}
	return reply.Message, nil
}

// GetUser fetches the public profile for email.
func (c *Client) GetUser(ctx context.Context, email string) (model.Account, error) {
	var account model.Account
	err := c.sendJSON(ctx, http.MethodGet, c.path("user", "email", email), nil, &account)
	return account, err
}

// ListDoctors returns every account with the doctor role.
func (c *Client) ListDoctors(ctx context.Context) ([]model.Account, error) {
	var doctors []model.Account
	if err := c.sendJSON(ctx, http.MethodGet, c.path("user", "role", "doctor"), nil, &doctors); err != nil {
		return nil, err
	}
	if doctors == nil {
		doctors = []model.Account{}
	}
	return doctors, nil
}
