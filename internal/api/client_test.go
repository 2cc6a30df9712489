package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/session"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess, err := session.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open session store: %v", err)
	}
	t.Cleanup(func() { sess.Close() })

	return New(srv.URL, 5*time.Second, sess), sess
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func TestClient_LoginUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
		var creds struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
			t.Errorf("failed to decode credentials: %v", err)
		}
		if creds.Password != "hunter2" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "invalid credentials"})
			return
		}
		writeJSON(t, w, http.StatusOK, models.LoginResponse{AccessToken: "tok-123", TokenType: "bearer"})
	})
	mux.HandleFunc("/users/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.Profile{UserID: "u-1", Name: "Mika", ShelterName: "North Hall"})
	})

	t.Run("success persists token, user type, and profile", func(t *testing.T) {
		client, sess := newTestClient(t, mux)

		lr, err := client.LoginUser(context.Background(), "mika@example.com", "hunter2")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if lr.AccessToken != "tok-123" {
			t.Errorf("expected token tok-123, got %s", lr.AccessToken)
		}
		if sess.Token() != "tok-123" {
			t.Errorf("expected persisted token, got %q", sess.Token())
		}
		if !sess.IsUser() {
			t.Error("expected user type to be user")
		}
		profile := sess.Profile()
		if profile == nil || profile.Name != "Mika" {
			t.Errorf("expected cached profile Mika, got %+v", profile)
		}
	})

	t.Run("rejected credentials return an auth error with the server reason", func(t *testing.T) {
		client, sess := newTestClient(t, mux)

		_, err := client.LoginUser(context.Background(), "mika@example.com", "wrong")
		if err == nil {
			t.Fatal("expected an error")
		}
		var authErr *AuthError
		if !errors.As(err, &authErr) {
			t.Fatalf("expected AuthError, got %T", err)
		}
		if authErr.Status != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", authErr.Status)
		}
		if authErr.Reason != "invalid credentials" {
			t.Errorf("expected server reason, got %q", authErr.Reason)
		}
		if sess.Token() != "" {
			t.Error("failed login must not persist a token")
		}
	})
}

func TestClient_LoginAdmin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/admins/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.LoginResponse{AccessToken: "admin-tok"})
	})
	mux.HandleFunc("/admins/me", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, models.Profile{ID: "a-1", Name: "Rin", ShelterName: "Central"})
	})

	client, sess := newTestClient(t, mux)

	if _, err := client.LoginAdmin(context.Background(), "rin@example.com", "pw"); err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	if !sess.IsAdmin() {
		t.Error("expected user type to be admin")
	}
	if sess.Token() != "admin-tok" {
		t.Errorf("expected persisted admin token, got %q", sess.Token())
	}
}

func TestClient_MissingTokenFailsBeforeNetwork(t *testing.T) {
	var hits atomic.Int64
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(t, w, http.StatusOK, map[string]string{})
	}))

	_, err := client.CurrentAdmin(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if !IsAuthError(err) {
		t.Fatalf("expected AuthError, got %T", err)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no request to reach the server, got %d", hits.Load())
	}
}

func TestClient_UnauthorizedClearsSession(t *testing.T) {
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusUnauthorized, map[string]string{"detail": "token expired"})
	}))
	if err := sess.SetToken("stale-tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}

	_, err := client.CurrentUser(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if StatusOf(err) != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", StatusOf(err))
	}
	if sess.Token() != "" {
		t.Error("a 401 must clear the stored token")
	}
}

func TestClient_RequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		writeJSON(t, w, http.StatusOK, models.Profile{UserID: "u-1"})
	}))
	if err := sess.SetToken("tok-abc"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}

	if _, err := client.CurrentUser(context.Background()); err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if gotAuth != "Bearer tok-abc" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("expected an X-Request-ID header")
	}
}

func TestClient_UpdateMedication(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]json.RawMessage
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.EscapedPath()
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &gotBody); err != nil {
			t.Errorf("failed to decode update body: %v", err)
		}
		writeJSON(t, w, http.StatusOK, models.InventoryItem{
			ShelterName:    "North Hall",
			MedicationName: "Aspirin 80mg",
			Quantity:       12,
		})
	})

	t.Run("payload carries only quantity and description", func(t *testing.T) {
		client, sess := newTestClient(t, handler)
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		item, err := client.UpdateMedication(context.Background(), "Aspirin 80mg", 12, "restocked")
		if err != nil {
			t.Fatalf("update failed: %v", err)
		}
		if gotMethod != http.MethodPut {
			t.Errorf("expected PUT, got %s", gotMethod)
		}
		if gotPath != "/admins/inventory/Aspirin%2080mg" {
			t.Errorf("expected escaped path, got %s", gotPath)
		}
		if len(gotBody) != 2 {
			t.Errorf("expected exactly 2 payload fields, got %d: %v", len(gotBody), gotBody)
		}
		if _, ok := gotBody["required_quantity"]; ok {
			t.Error("update payload must never carry required_quantity")
		}
		if item.Quantity.Int() != 12 {
			t.Errorf("expected quantity 12, got %d", item.Quantity.Int())
		}
	})

	t.Run("negative quantity is clamped to zero", func(t *testing.T) {
		client, sess := newTestClient(t, handler)
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		if _, err := client.UpdateMedication(context.Background(), "Aspirin 80mg", -3, ""); err != nil {
			t.Fatalf("update failed: %v", err)
		}
		var qty int
		if err := json.Unmarshal(gotBody["quantity"], &qty); err != nil {
			t.Fatalf("failed to decode quantity: %v", err)
		}
		if qty != 0 {
			t.Errorf("expected clamped quantity 0, got %d", qty)
		}
	})

	t.Run("not found returns an HTTP error", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusNotFound, map[string]string{"detail": "no such medication"})
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		_, err := client.UpdateMedication(context.Background(), "Ghost", 1, "")
		var httpErr *HTTPError
		if !errors.As(err, &httpErr) {
			t.Fatalf("expected HTTPError, got %T", err)
		}
		if httpErr.Status != http.StatusNotFound || httpErr.Detail != "no such medication" {
			t.Errorf("unexpected error: %+v", httpErr)
		}
	})
}

func TestClient_MyShelterInventory(t *testing.T) {
	t.Run("items are normalized", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[{"shelter_name":"North Hall","medication_name":"Aspirin","quantity":"5","required_quantity":-2,"expiry_date":""}]`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		items, err := client.MyShelterInventory(context.Background())
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(items) != 1 {
			t.Fatalf("expected 1 item, got %d", len(items))
		}
		if items[0].Quantity.Int() != 5 {
			t.Errorf("expected numeric-string quantity 5, got %d", items[0].Quantity.Int())
		}
		if items[0].RequiredQuantity != 0 {
			t.Errorf("expected negative required quantity clamped, got %v", items[0].RequiredQuantity)
		}
		if items[0].ExpiryDate != nil {
			t.Error("expected empty expiry date normalized to nil")
		}
	})

	t.Run("empty array is a data format error", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		_, err := client.MyShelterInventory(context.Background())
		var dfe *DataFormatError
		if !errors.As(err, &dfe) {
			t.Fatalf("expected DataFormatError, got %v", err)
		}
	})

	t.Run("non-array payload is a data format error", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"detail":"maintenance"}`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		_, err := client.MyShelterInventory(context.Background())
		var dfe *DataFormatError
		if !errors.As(err, &dfe) {
			t.Fatalf("expected DataFormatError, got %v", err)
		}
	})
}

func TestClient_AllInventory(t *testing.T) {
	t.Run("non-array payload degrades to an empty list", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"status":"rebuilding"}`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		items, err := client.AllInventory(context.Background())
		if err != nil {
			t.Fatalf("expected degradation, got error: %v", err)
		}
		if items == nil || len(items) != 0 {
			t.Errorf("expected empty non-nil slice, got %v", items)
		}
	})

	t.Run("invalid JSON is a data format error", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `not json at all`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		_, err := client.AllInventory(context.Background())
		var dfe *DataFormatError
		if !errors.As(err, &dfe) {
			t.Fatalf("expected DataFormatError, got %v", err)
		}
	})

	t.Run("array payload is returned normalized", func(t *testing.T) {
		client, sess := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"shelter_name":"A","medication_name":"Ibuprofen","quantity":3},{"shelter_name":"B","medication_name":"Ibuprofen","quantity":-1}]`)
		}))
		if err := sess.SetToken("tok"); err != nil {
			t.Fatalf("failed to seed token: %v", err)
		}

		items, err := client.AllInventory(context.Background())
		if err != nil {
			t.Fatalf("fetch failed: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[1].Quantity != 0 {
			t.Errorf("expected negative quantity clamped, got %v", items[1].Quantity)
		}
	})
}

func TestClient_Settings(t *testing.T) {
	mux := http.NewServeMux()
	var saved models.AdminSettings
	mux.HandleFunc("/admins/me/settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			if err := json.NewDecoder(r.Body).Decode(&saved); err != nil {
				t.Errorf("failed to decode settings: %v", err)
			}
			writeJSON(t, w, http.StatusOK, saved)
			return
		}
		writeJSON(t, w, http.StatusOK, models.AdminSettings{
			Name: "North Hall", Phone: "555-0100",
			AggregateRange: 10, StockThreshold: 5, ExpireWarnDays: 30,
		})
	})

	client, sess := newTestClient(t, mux)
	if err := sess.SetToken("tok"); err != nil {
		t.Fatalf("failed to seed token: %v", err)
	}

	got, err := client.Settings(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if got.Name != "North Hall" || got.StockThreshold.Int() != 5 {
		t.Errorf("unexpected settings: %+v", got)
	}

	got.Phone = "555-0199"
	updated, err := client.SaveSettings(context.Background(), *got)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if updated.Phone != "555-0199" {
		t.Errorf("expected updated phone, got %s", updated.Phone)
	}
	if saved.StockThreshold.Int() != 5 || saved.ExpireWarnDays.Int() != 30 {
		t.Errorf("save must echo server-owned fields, got %+v", saved)
	}
}
