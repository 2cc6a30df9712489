package tui

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/session"
)

func TestApp_StartPage(t *testing.T) {
	t.Run("no session starts on login", func(t *testing.T) {
		app := newLoginApp(t)
		if app.currentPage != PageLogin {
			t.Errorf("expected login page, got %s", app.currentPage)
		}
	})

	t.Run("admin session starts on dashboard", func(t *testing.T) {
		app := newTestApp(t)
		if app.currentPage != PageDashboard {
			t.Errorf("expected dashboard, got %s", app.currentPage)
		}
	})

	t.Run("user session starts on my page", func(t *testing.T) {
		client := newTestClient(t)
		seedUser(t, client.Session())
		app := New(client, testConfig(t), "")
		if app.currentPage != PageMyPage {
			t.Errorf("expected my page, got %s", app.currentPage)
		}
	})

	t.Run("medical data starts on the QR viewer", func(t *testing.T) {
		app := New(newTestClient(t), testConfig(t), `{"name":"Mika"}`)
		if app.currentPage != PageMedical {
			t.Errorf("expected medical viewer, got %s", app.currentPage)
		}
	})
}

func TestApp_View_NotReady(t *testing.T) {
	app := newTestApp(t)
	app.ready = false

	if !strings.Contains(app.View(), "Initializing") {
		t.Error("expected initialization message when not ready")
	}
}

func TestApp_View_Quitting(t *testing.T) {
	app := newTestApp(t)
	app.quitting = true

	if !strings.Contains(app.View(), "signing off") {
		t.Error("expected sign-off message when quitting")
	}
}

func TestApp_WindowResize(t *testing.T) {
	app := newTestApp(t)
	app.ready = false
	app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	if app.width != 80 || app.height != 24 {
		t.Errorf("expected 80x24, got %dx%d", app.width, app.height)
	}
	if !app.ready {
		t.Error("expected app ready after window size")
	}
}

func TestApp_QuitConfirmation(t *testing.T) {
	t.Run("q shows the dialog", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(keyMsg("q"))
		if !app.showConfirm {
			t.Error("expected quit confirmation to show")
		}
		if !strings.Contains(app.View(), "CONFIRM EXIT") {
			t.Error("expected confirm dialog in output")
		}
	})

	t.Run("F10 shows the dialog", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(specialKeyMsg(tea.KeyF10))
		if !app.showConfirm {
			t.Error("expected quit confirmation from F10")
		}
	})

	t.Run("n cancels", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(keyMsg("q"))
		app.Update(keyMsg("n"))
		if app.showConfirm || app.quitting {
			t.Error("expected confirmation dismissed without quitting")
		}
	})

	t.Run("esc cancels", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(keyMsg("q"))
		app.Update(specialKeyMsg(tea.KeyEscape))
		if app.showConfirm {
			t.Error("expected Esc to dismiss confirmation")
		}
	})

	t.Run("y quits", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(keyMsg("q"))
		_, cmd := app.Update(keyMsg("y"))
		if !app.quitting {
			t.Error("expected app to be quitting after confirm")
		}
		if cmd == nil {
			t.Error("expected tea.Quit command")
		}
	})

	t.Run("unrelated keys keep the dialog open", func(t *testing.T) {
		app := newTestApp(t)
		app.Update(keyMsg("q"))
		app.Update(keyMsg("x"))
		if !app.showConfirm {
			t.Error("expected confirmation to stay open")
		}
	})
}

func TestApp_FunctionKeyNavigation(t *testing.T) {
	tests := []struct {
		key      tea.KeyType
		expected Page
	}{
		{tea.KeyF3, PageInventory},
		{tea.KeyF4, PageSettings},
		{tea.KeyF2, PageDashboard},
	}

	for _, tt := range tests {
		t.Run(string(tt.expected), func(t *testing.T) {
			app := newTestApp(t)
			app.Update(specialKeyMsg(tt.key))

			if app.currentPage != tt.expected {
				t.Errorf("expected page %s, got %s", tt.expected, app.currentPage)
			}
		})
	}
}

func TestApp_FunctionKeyNavigation_RequiresAdmin(t *testing.T) {
	client := newTestClient(t)
	seedUser(t, client.Session())
	app := New(client, testConfig(t), "")
	app.width, app.height, app.ready = 120, 40, true

	app.Update(specialKeyMsg(tea.KeyF3))

	if app.currentPage != PageMyPage {
		t.Errorf("expected to stay on my page, got %s", app.currentPage)
	}
	if len(app.alerts) == 0 || !strings.Contains(app.alerts[0].Message, "Administrator access required") {
		t.Error("expected an access-denied alert")
	}
}

func TestApp_FunctionKeyNavigation_NoOpFromMedicalViewer(t *testing.T) {
	app := New(newTestClient(t), testConfig(t), `{"name":"Mika"}`)
	app.width, app.height, app.ready = 120, 40, true

	app.Update(specialKeyMsg(tea.KeyF3))

	if app.currentPage != PageMedical {
		t.Errorf("expected to stay on medical viewer, got %s", app.currentPage)
	}
}

func TestApp_NavigationClearsDashboardDetail(t *testing.T) {
	app := newTestApp(t)
	app.showDetail = true

	app.Update(specialKeyMsg(tea.KeyF3))

	if app.showDetail {
		t.Error("expected detail cleared on page switch")
	}
}

func TestApp_Logout(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyCtrlL))

	if app.currentPage != PageLogin {
		t.Errorf("expected login page after logout, got %s", app.currentPage)
	}
	if app.client.Session().Token() != "" {
		t.Error("expected session cleared on logout")
	}
}

func TestApp_LoginFlow(t *testing.T) {
	t.Run("patient credentials land on my page", func(t *testing.T) {
		app := newLoginApp(t)

		for _, r := range "mika@example.com" {
			app.Update(keyMsg(string(r)))
		}
		app.Update(specialKeyMsg(tea.KeyTab))
		for _, r := range "hunter2" {
			app.Update(keyMsg(string(r)))
		}
		_, cmd := app.Update(specialKeyMsg(tea.KeyEnter))
		if cmd == nil {
			t.Fatal("expected a login command")
		}

		app.Update(cmd())

		if app.currentPage != PageMyPage {
			t.Errorf("expected my page after patient login, got %s", app.currentPage)
		}
		if !app.client.Session().IsUser() {
			t.Error("expected user session")
		}
	})

	t.Run("admin credentials fall back to the admin endpoint", func(t *testing.T) {
		app := newLoginApp(t)

		for _, r := range "admin@example.com" {
			app.Update(keyMsg(string(r)))
		}
		app.Update(specialKeyMsg(tea.KeyTab))
		for _, r := range "pw" {
			app.Update(keyMsg(string(r)))
		}
		_, cmd := app.Update(specialKeyMsg(tea.KeyEnter))
		if cmd == nil {
			t.Fatal("expected a login command")
		}

		app.Update(cmd())

		if app.currentPage != PageDashboard {
			t.Errorf("expected dashboard after admin login, got %s", app.currentPage)
		}
		if !app.client.Session().IsAdmin() {
			t.Error("expected admin session")
		}
	})

	t.Run("admin fallback fires when the patient endpoint errors", func(t *testing.T) {
		// A patient-endpoint outage must not block an administrator from
		// signing in through the fallback.
		mux := http.NewServeMux()
		mux.HandleFunc("/users/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"detail":"user service down"}`))
		})
		mux.HandleFunc("/admins/login", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"admin-tok"}`))
		})
		mux.HandleFunc("/admins/me", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"a-1","name":"Rin","shelter_name":"North Hall"}`))
		})
		srv := httptest.NewServer(mux)
		t.Cleanup(srv.Close)

		sess, err := session.OpenInMemory()
		if err != nil {
			t.Fatalf("failed to open session store: %v", err)
		}
		t.Cleanup(func() { sess.Close() })

		client := api.New(srv.URL, 5*time.Second, sess)
		app := New(client, testConfig(t), "")
		app.width, app.height, app.ready = 120, 40, true

		msg := app.login("rin@example.com", "pw")()
		result, ok := msg.(loginResultMsg)
		if !ok {
			t.Fatalf("unexpected message %T", msg)
		}
		if result.err != nil {
			t.Fatalf("expected admin fallback to succeed, got %v", result.err)
		}
		if result.userType != models.UserTypeAdmin {
			t.Errorf("expected admin login, got %s", result.userType)
		}
	})

	t.Run("empty submit shows a validation error", func(t *testing.T) {
		app := newLoginApp(t)
		_, cmd := app.Update(specialKeyMsg(tea.KeyEnter))
		if cmd != nil {
			t.Error("expected no login command for empty form")
		}
		if !strings.Contains(app.View(), "Please enter both email and password") {
			t.Error("expected validation message in output")
		}
	})
}

func TestApp_LoginErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"rejected credentials", &api.AuthError{Status: 401, Reason: "bad"}, "Incorrect email or password"},
		{"server failure", &api.AuthError{Status: 503, Reason: "down"}, "Server error, please try again later"},
		{"other auth failure", &api.AuthError{Status: 422, Reason: "email format"}, "email format"},
		{"network failure", http.ErrHandlerTimeout, "Could not reach the server"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := loginErrorMessage(tt.err); got != tt.expected {
				t.Errorf("loginErrorMessage = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestApp_SessionExpiryRedirect(t *testing.T) {
	app := newTestApp(t)

	_, cmd := app.Update(pageLoadedMsg{page: PageDashboard, err: api.ErrInvalidSession()})
	if cmd == nil {
		t.Fatal("expected a redirect command")
	}
	if len(app.alerts) == 0 || !strings.Contains(app.alerts[0].Message, "Session expired") {
		t.Error("expected session-expired alert")
	}

	app.Update(redirectLoginMsg{})

	if app.currentPage != PageLogin {
		t.Errorf("expected login page after redirect, got %s", app.currentPage)
	}
	if app.client.Session().Token() != "" {
		t.Error("expected session cleared on redirect")
	}
}

func TestApp_StaleLoadResultIgnored(t *testing.T) {
	app := newTestApp(t)

	stale := app.loadPage(PageDashboard)
	_ = app.loadPage(PageDashboard)

	// The older load failing must not raise an alert once a newer one is
	// in flight.
	msg := stale().(pageLoadedMsg)
	msg.err = api.ErrInvalidSession()
	app.Update(msg)

	if len(app.alerts) != 0 {
		t.Errorf("expected stale failure dropped, got alerts %+v", app.alerts)
	}
}

func TestApp_DashboardRender(t *testing.T) {
	app := newTestApp(t)
	loadCurrentPage(t, app)

	output := app.View()
	if !strings.Contains(output, "=== DASHBOARD ===") {
		t.Error("expected dashboard title in output")
	}
	if !strings.Contains(output, "East Annex") {
		t.Error("expected other shelters in output")
	}
}

func TestApp_DashboardDetailToggle(t *testing.T) {
	app := newTestApp(t)
	loadCurrentPage(t, app)

	app.Update(specialKeyMsg(tea.KeyEnter))
	if !app.showDetail {
		t.Fatal("expected detail view after enter")
	}
	if !strings.Contains(app.View(), "=== SHORTAGES ===") {
		t.Error("expected shortage detail in output")
	}

	app.Update(specialKeyMsg(tea.KeyEscape))
	if app.showDetail {
		t.Error("expected esc to close detail")
	}
}

func TestApp_InventoryEditFlow(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	loadCurrentPage(t, app)

	app.Update(keyMsg("e"))
	if !app.stockView.Editing() {
		t.Fatal("expected edit modal after e")
	}

	// Replace the prefilled quantity and submit the form.
	for i := 0; i < 4; i++ {
		app.Update(specialKeyMsg(tea.KeyBackspace))
	}
	app.Update(keyMsg("7"))
	app.Update(specialKeyMsg(tea.KeyEnter))
	_, cmd := app.Update(specialKeyMsg(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	app.Update(cmd())

	if app.stockView.Editing() {
		t.Error("expected edit modal closed after save")
	}
	if len(app.alerts) == 0 || app.alerts[0].Message != "Stock updated" {
		t.Error("expected a stock-updated alert")
	}
}

func TestApp_InventoryEditRefusedOnOtherTabs(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF3))
	loadCurrentPage(t, app)

	app.Update(specialKeyMsg(tea.KeyRight))
	app.Update(keyMsg("e"))

	if app.stockView.Editing() {
		t.Fatal("expected no edit modal on the shelters tab")
	}
	if len(app.alerts) == 0 || !strings.Contains(app.alerts[0].Message, "own shelter") {
		t.Error("expected an own-shelter-only alert")
	}
}

func TestApp_SettingsSaveFlow(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	loadCurrentPage(t, app)

	app.Update(keyMsg("e"))
	if !app.settingsView.Editing() {
		t.Fatal("expected settings edit mode after e")
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	msg := cmd()
	saved, ok := msg.(settingsSavedMsg)
	if !ok {
		t.Fatalf("expected settingsSavedMsg, got %T", msg)
	}
	if saved.err != nil {
		t.Fatalf("save failed: %v", saved.err)
	}
	if saved.settings.StockThreshold.Int() != 5 || saved.settings.ExpireWarnDays.Int() != 30 {
		t.Errorf("expected server-owned fields echoed, got %+v", saved.settings)
	}

	app.Update(msg)
	if len(app.alerts) == 0 || app.alerts[0].Message != "Settings saved" {
		t.Error("expected a settings-saved alert")
	}
}

func TestApp_SettingsColorSchemeApplied(t *testing.T) {
	app := newTestApp(t)
	app.Update(specialKeyMsg(tea.KeyF4))
	loadCurrentPage(t, app)

	app.Update(keyMsg("e"))
	app.Update(specialKeyMsg(tea.KeyTab))
	app.Update(specialKeyMsg(tea.KeyTab))
	app.Update(specialKeyMsg(tea.KeyTab))
	app.Update(specialKeyMsg(tea.KeyRight))

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	if cmd == nil {
		t.Fatal("expected a save command")
	}

	if app.config.Display.ColorScheme != config.ColorSchemeAmber {
		t.Errorf("expected amber scheme applied, got %s", app.config.Display.ColorScheme)
	}
}

func TestApp_ErrorMessage(t *testing.T) {
	if got := errorMessage(&api.HTTPError{Status: 403}); !strings.Contains(got, "admin rights") {
		t.Errorf("unexpected 403 message: %q", got)
	}
	if got := errorMessage(&api.DataFormatError{Detail: "not an array"}); got != "not an array" {
		t.Errorf("unexpected data format message: %q", got)
	}
}

func TestApp_AddAlert_CapsHistory(t *testing.T) {
	app := newTestApp(t)
	for i := 0; i < 15; i++ {
		app.AddAlert(AlertInfo, "note")
	}
	if len(app.alerts) != 10 {
		t.Errorf("expected alert history capped at 10, got %d", len(app.alerts))
	}
}

func TestApp_HeaderShowsIdentity(t *testing.T) {
	app := newTestApp(t)
	output := app.View()
	if !strings.Contains(output, "Rin") {
		t.Error("expected signed-in name in header")
	}
	if !strings.Contains(output, string(models.UserTypeAdmin)) {
		t.Error("expected user type in header")
	}
}
