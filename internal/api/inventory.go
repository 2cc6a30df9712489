package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/medilink/medilink/internal/models"
)

// MyShelterInventory fetches the caller's own shelter inventory. The
// response must be a non-empty array; every item is normalized before it is
// returned.
func (c *Client) MyShelterInventory(ctx context.Context) ([]models.InventoryItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admins/my-shelter/inventory", nil, true)
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
			detail = "fetching shelter inventory failed"
		}
		return nil, &HTTPError{Status: resp.StatusCode, Detail: detail}
	}

	items, err := decodeItemArray(resp.Body)
	if err != nil {
		return nil, err
	}
	if items == nil {
		return nil, &DataFormatError{Detail: "shelter inventory is not an array"}
	}
	if len(items) == 0 {
		return nil, &DataFormatError{Detail: "shelter inventory is empty"}
	}
	return models.NormalizeItems(items), nil
}

// AllInventory fetches the full cross-shelter inventory. A payload that is
// valid JSON but not an array degrades to an empty list so one misbehaving
// endpoint does not take the whole page down.
func (c *Client) AllInventory(ctx context.Context) ([]models.InventoryItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/admins/inventory", nil, true)
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

	items, err := decodeItemArray(resp.Body)
	if err != nil {
		return nil, err
	}
	if items == nil {
		slog.Warn("inventory endpoint returned a non-array payload, degrading to empty list")
		return []models.InventoryItem{}, nil
	}
	return models.NormalizeItems(items), nil
}

// UpdateMedication updates one medication's quantity and description in the
// caller's shelter. The payload never carries required_quantity: that field
// is server-owned.
func (c *Client) UpdateMedication(ctx context.Context, medicationName string, quantity int, description string) (*models.InventoryItem, error) {
	if quantity < 0 {
		quantity = 0
	}
	update := models.InventoryUpdate{Quantity: quantity, Description: description}

	path := "/admins/inventory/" + url.PathEscape(medicationName)
	resp, err := c.do(ctx, http.MethodPut, path, update, true)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized:
		return nil, c.unauthorized()
	case http.StatusForbidden, http.StatusNotFound:
		return nil, &HTTPError{Status: resp.StatusCode, Detail: errorDetail(resp)}
	default:
		detail := errorDetail(resp)
		if detail == "" {
			detail = "inventory update failed"
		}
		return nil, &HTTPError{Status: resp.StatusCode, Detail: detail}
	}

	var item models.InventoryItem
	if err := decode(resp, &item); err != nil {
		return nil, err
	}
	item.Normalize()
	return &item, nil
}

// decodeItemArray decodes an inventory payload. Invalid JSON is a
// DataFormatError; valid JSON that is not an array returns (nil, nil) so
// callers choose between degrading and failing.
func decodeItemArray(r io.Reader) ([]models.InventoryItem, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading inventory response: %w", err)
	}

	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &DataFormatError{Detail: fmt.Sprintf("invalid JSON: %v", err)}
	}

	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, nil
	}

	var items []models.InventoryItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DataFormatError{Detail: fmt.Sprintf("decoding inventory items: %v", err)}
	}
	if items == nil {
		items = []models.InventoryItem{}
	}
	return items, nil
}
