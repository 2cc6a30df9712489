package api

import (
	"context"
	"net/http"

	"github.com/medilink/medilink/internal/models"
)

// Settings fetches the admin's shelter settings.
func (c *Client) Settings(ctx context.Context) (*models.AdminSettings, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admins/me/settings", nil, true)
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

	var s models.AdminSettings
	if err := decode(resp, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSettings replaces the admin's shelter settings. The caller must send
// the full object; stock_threshold and expire_warn_days are echoed from the
// last fetch, never edited client-side.
func (c *Client) SaveSettings(ctx context.Context, settings models.AdminSettings) (*models.AdminSettings, error) {
	resp, err := c.do(ctx, http.MethodPut, "/admins/me/settings", settings, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, c.unauthorized()
	case resp.StatusCode != http.StatusOK:
		detail := errorDetail(resp)
		if detail == "" {
			detail = "saving settings failed; check your input"
		}
		return nil, &HTTPError{Status: resp.StatusCode, Detail: detail}
	}

	var updated models.AdminSettings
	if err := decode(resp, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
