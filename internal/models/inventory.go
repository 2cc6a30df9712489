// Package models defines the data structures exchanged with the MediLink API.
package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Quantity is a numeric field that tolerates the API returning numbers,
// numeric strings, null, or garbage. Anything that does not parse decodes
// to zero rather than failing the whole payload.
type Quantity float64

// UnmarshalJSON implements json.Unmarshaler.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*q = 0
		return nil
	}

	// Numeric string, e.g. "5"
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*q = 0
		return nil
	}

	*q = Quantity(v)
	return nil
}

// Int returns the quantity as a non-negative integer.
func (q Quantity) Int() int {
	if q < 0 {
		return 0
	}
	return int(q)
}

// InventoryItem is one medication held by one shelter. Identity is the
// (ShelterName, MedicationName) pair, unique per shelter.
type InventoryItem struct {
	ShelterName      string   `json:"shelter_name"`
	MedicationName   string   `json:"medication_name"`
	Quantity         Quantity `json:"quantity"`
	RequiredQuantity Quantity `json:"required_quantity"`
	ExpiryDate       *string  `json:"expiry_date"` // "2006-01-02" or null
	Description      string   `json:"description"`
}

// Normalize establishes the non-negative-number invariant on the item's
// numeric fields and defaults the remaining fields. Applied once at the
// gateway boundary so downstream consumers never re-check.
func (i *InventoryItem) Normalize() {
	if i.Quantity < 0 {
		i.Quantity = 0
	}
	if i.RequiredQuantity < 0 {
		i.RequiredQuantity = 0
	}
	if i.ExpiryDate != nil && *i.ExpiryDate == "" {
		i.ExpiryDate = nil
	}
}

// NormalizeItems normalizes every item in place and returns the slice.
func NormalizeItems(items []InventoryItem) []InventoryItem {
	for idx := range items {
		items[idx].Normalize()
	}
	return items
}

// InventoryUpdate is the outgoing payload for a medication update. It
// deliberately has no required_quantity field: that value is owned by the
// server and must never appear on the wire from the client.
type InventoryUpdate struct {
	Quantity    int    `json:"quantity"`
	Description string `json:"description"`
}

// MarshalUpdate builds the update payload from user input, clamping the
// quantity to zero.
func MarshalUpdate(quantity int, description string) ([]byte, error) {
	if quantity < 0 {
		quantity = 0
	}
	return json.Marshal(InventoryUpdate{Quantity: quantity, Description: description})
}
