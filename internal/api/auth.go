package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/medilink/medilink/internal/models"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginUser authenticates against the patient login endpoint. On success the
// token, user type, and (best effort) profile are persisted in the session
// store.
func (c *Client) LoginUser(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return c.login(ctx, "/users/login", email, password, models.UserTypeUser)
}

// LoginAdmin authenticates against the shelter-admin login endpoint.
func (c *Client) LoginAdmin(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	return c.login(ctx, "/admins/login", email, password, models.UserTypeAdmin)
}

func (c *Client) login(ctx context.Context, path, email, password string, userType models.UserType) (*models.LoginResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password}, false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		reason := errorDetail(resp)
		if reason == "" {
			reason = "login failed"
		}
		return nil, &AuthError{Status: resp.StatusCode, Reason: reason}
	}

	var lr models.LoginResponse
	if err := decode(resp, &lr); err != nil {
		return nil, err
	}

	if err := c.session.SetToken(lr.AccessToken); err != nil {
		return nil, fmt.Errorf("persisting token: %w", err)
	}
	if err := c.session.SetUserType(userType); err != nil {
		return nil, fmt.Errorf("persisting user type: %w", err)
	}

	// Best effort: a login without a cached profile is still a login.
	if _, err := c.currentProfile(ctx, userType); err != nil {
		slog.Warn("profile fetch after login failed", "error", err)
	}

	return &lr, nil
}

// CurrentUser fetches and caches the patient profile. A 401 invalidates the
// stored session.
func (c *Client) CurrentUser(ctx context.Context) (*models.Profile, error) {
	return c.currentProfile(ctx, models.UserTypeUser)
}

// CurrentAdmin fetches and caches the admin profile.
func (c *Client) CurrentAdmin(ctx context.Context) (*models.Profile, error) {
	return c.currentProfile(ctx, models.UserTypeAdmin)
}

func (c *Client) currentProfile(ctx context.Context, userType models.UserType) (*models.Profile, error) {
	path := "/users/me"
	if userType == models.UserTypeAdmin {
		path = "/admins/me"
	}

	resp, err := c.do(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.unauthorized()
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{Status: resp.StatusCode, Detail: errorDetail(resp)}
	}

	var p models.Profile
	if err := decode(resp, &p); err != nil {
		return nil, err
	}

	if err := c.session.SetProfile(&p); err != nil {
		slog.Warn("caching profile failed", "error", err)
	}
	return &p, nil
}

// MedicalInfo fetches the medical information encoded into the patient's QR
// code.
func (c *Client) MedicalInfo(ctx context.Context, userID string) (*models.MedicalInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/qr/"+userID, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.unauthorized()
	case resp.StatusCode != http.StatusOK:
		return nil, &HTTPError{Status: resp.StatusCode, Detail: errorDetail(resp)}
	}

	var info models.MedicalInfo
	if err := decode(resp, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// QRImage fetches the patient's QR code as raw PNG bytes. Generation is the
// backend's job; the client only transports the image.
func (c *Client) QRImage(ctx context.Context, userID string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/users/qr-image/"+userID, nil, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, c.unauthorized()
	}
	if resp.StatusCode != http.StatusOK {
		if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
			return nil, &HTTPError{Status: resp.StatusCode, Detail: errorDetail(resp)}
		}
		return nil, &HTTPError{Status: resp.StatusCode, Detail: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading QR image: %w", err)
	}
	return data, nil
}

// Logout clears the persisted session. Side effect only; it never fails.
func (c *Client) Logout() {
	c.session.Clear()
}
