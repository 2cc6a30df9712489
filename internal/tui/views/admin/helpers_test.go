package admin

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/session"
)

func expiry(days int) *string {
	s := time.Now().AddDate(0, 0, days).Format("2006-01-02")
	return &s
}

func fixtureOwnInventory() []models.InventoryItem {
	return []models.InventoryItem{
		{ShelterName: "North Hall", MedicationName: "Aspirin", Quantity: 2, RequiredQuantity: 10, ExpiryDate: expiry(90)},
		{ShelterName: "North Hall", MedicationName: "Ibuprofen", Quantity: 50, RequiredQuantity: 5, ExpiryDate: expiry(3)},
		{ShelterName: "North Hall", MedicationName: "Gauze", Quantity: 5, RequiredQuantity: 0},
	}
}

func fixtureAllInventory() []models.InventoryItem {
	return append(fixtureOwnInventory(),
		models.InventoryItem{ShelterName: "East Annex", MedicationName: "Aspirin", Quantity: 30, RequiredQuantity: 10},
		models.InventoryItem{ShelterName: "South Wing", MedicationName: "Aspirin", Quantity: 4, RequiredQuantity: 10},
	)
}

// newAdminClient serves the admin API surface with the fixture inventory and
// returns a client whose session is already an admin one.
func newAdminClient(t *testing.T, shelterName string) *api.Client {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/admins/my-shelter/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fixtureOwnInventory())
	})
	mux.HandleFunc("/admins/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fixtureAllInventory())
	})
	mux.HandleFunc("/admins/me/settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			var s models.AdminSettings
			_ = json.NewDecoder(r.Body).Decode(&s)
			writeJSON(w, s)
			return
		}
		writeJSON(w, models.AdminSettings{
			Name: "North Hall", Phone: "555-0100",
			AggregateRange: 10, StockThreshold: 5, ExpireWarnDays: 30,
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	sess, err := session.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	if err := sess.SetToken("tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	if err := sess.SetUserType(models.UserTypeAdmin); err != nil {
		t.Fatalf("failed to seed user type: %v", err)
	}
	if err := sess.SetProfile(&models.Profile{ID: "a-1", Name: "Rin", ShelterName: shelterName}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	return api.New(srv.URL, 5*time.Second, sess)
}

func typeKeys(handle func(string), s string) {
	for _, r := range s {
		handle(string(r))
	}
}
