package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/session"
)

// expiry dates for the fixture inventory, relative to the test run so the
// dashboard classifies them the same way every day.
func fixtureExpiry(days int) *string {
	s := time.Now().AddDate(0, 0, days).Format("2006-01-02")
	return &s
}

// testBackend serves the API surface the app touches, backed by a small
// fixed inventory for the "North Hall" shelter.
func testBackend(t *testing.T) http.Handler {
	t.Helper()

	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(v); err != nil {
			t.Errorf("failed to encode response: %v", err)
		}
	}

	ownInventory := []models.InventoryItem{
		{ShelterName: "North Hall", MedicationName: "Aspirin", Quantity: 2, RequiredQuantity: 10, ExpiryDate: fixtureExpiry(90)},
		{ShelterName: "North Hall", MedicationName: "Ibuprofen", Quantity: 50, RequiredQuantity: 5, ExpiryDate: fixtureExpiry(3)},
	}
	allInventory := append([]models.InventoryItem{
		{ShelterName: "East Annex", MedicationName: "Aspirin", Quantity: 30, RequiredQuantity: 10},
	}, ownInventory...)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email string `json:"email"`
		}
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Email == "admin@example.com" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "not a patient account"})
			return
		}
		writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: "user-tok"})
	})
	mux.HandleFunc("/admins/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.LoginResponse{AccessToken: "admin-tok"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Profile{UserID: "u-1", Name: "Mika", BloodType: "O+"})
	})
	mux.HandleFunc("/admins/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Profile{ID: "a-1", Name: "Rin", ShelterName: "North Hall"})
	})
	mux.HandleFunc("/admins/my-shelter/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ownInventory)
	})
	mux.HandleFunc("/admins/inventory", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, allInventory)
	})
	mux.HandleFunc("/admins/inventory/", func(w http.ResponseWriter, r *http.Request) {
		var upd models.InventoryUpdate
		_ = json.NewDecoder(r.Body).Decode(&upd)
		item := ownInventory[0]
		item.Quantity = models.Quantity(upd.Quantity)
		item.Description = upd.Description
		writeJSON(w, http.StatusOK, item)
	})
	mux.HandleFunc("/admins/me/settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			var s models.AdminSettings
			_ = json.NewDecoder(r.Body).Decode(&s)
			writeJSON(w, http.StatusOK, s)
			return
		}
		writeJSON(w, http.StatusOK, models.AdminSettings{
			Name: "North Hall", Phone: "555-0100",
			AggregateRange: 10, StockThreshold: 5, ExpireWarnDays: 30,
		})
	})
	// Patient QR endpoints are best effort; the page must render without them.
	mux.HandleFunc("/users/qr/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not generated"})
	})
	mux.HandleFunc("/users/qr-image/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not generated"})
	})
	return mux
}

// newTestClient builds a client against the fixture backend with an
// in-memory session store.
func newTestClient(t *testing.T) *api.Client {
	t.Helper()

	srv := httptest.NewServer(testBackend(t))
	t.Cleanup(srv.Close)

	sess, err := session.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	return api.New(srv.URL, 5*time.Second, sess)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Session.Path = filepath.Join(t.TempDir(), "session.db")
	return cfg
}

func seedAdmin(t *testing.T, sess *session.Store) {
	t.Helper()
	if err := sess.SetToken("admin-tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	if err := sess.SetUserType(models.UserTypeAdmin); err != nil {
		t.Fatalf("failed to seed user type: %v", err)
	}
	if err := sess.SetProfile(&models.Profile{ID: "a-1", Name: "Rin", ShelterName: "North Hall"}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
}

func seedUser(t *testing.T, sess *session.Store) {
	t.Helper()
	if err := sess.SetToken("user-tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}
	if err := sess.SetUserType(models.UserTypeUser); err != nil {
		t.Fatalf("failed to seed user type: %v", err)
	}
}

// newTestApp creates an admin-session App with the window pre-sized, so key
// handling tests can skip the WindowSizeMsg round trip.
func newTestApp(t *testing.T) *App {
	t.Helper()

	client := newTestClient(t)
	seedAdmin(t, client.Session())

	app := New(client, testConfig(t), "")
	app.width = 120
	app.height = 40
	app.ready = true
	return app
}

// newLoginApp creates an App with no persisted session.
func newLoginApp(t *testing.T) *App {
	t.Helper()

	app := New(newTestClient(t), testConfig(t), "")
	app.width = 120
	app.height = 40
	app.ready = true
	return app
}

// loadCurrentPage runs the current page's load command synchronously and
// feeds the result back into the model.
func loadCurrentPage(t *testing.T, app *App) {
	t.Helper()
	cmd := app.loadPage(app.currentPage)
	if cmd == nil {
		t.Fatalf("page %s has no load command", app.currentPage)
	}
	app.Update(cmd())
}

// keyMsg creates a tea.KeyMsg for a regular character key.
func keyMsg(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// specialKeyMsg creates a tea.KeyMsg for a special key type.
func specialKeyMsg(keyType tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: keyType}
}
