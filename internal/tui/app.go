package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/medilink/medilink/internal/api"
	"github.com/medilink/medilink/internal/config"
	"github.com/medilink/medilink/internal/models"
	"github.com/medilink/medilink/internal/tui/views/admin"
	"github.com/medilink/medilink/internal/tui/views/auth"
	"github.com/medilink/medilink/internal/tui/views/medical"
	"github.com/medilink/medilink/internal/tui/views/patient"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// MaxContentWidth is the maximum width for content display
const MaxContentWidth = 120

// Page identifies a screen in the application.
type Page string

const (
	PageLogin     Page = "login"
	PageMyPage    Page = "mypage"
	PageDashboard Page = "dashboard"
	PageInventory Page = "inventory"
	PageSettings  Page = "settings"
	PageMedical   Page = "medical"
)

// App is the main Bubble Tea application model.
type App struct {
	// Dependencies
	client *api.Client
	config *config.Config

	// Views
	loginView    *auth.LoginView
	myPageView   *patient.MyPageView
	dashView     *admin.DashboardView
	stockView    *admin.StockView
	settingsView *admin.SettingsView
	medicalView  *medical.ViewerView

	// UI state
	theme       *Theme
	keys        KeyMap
	width       int
	height      int
	ready       bool
	quitting    bool
	showConfirm bool

	currentPage Page
	showDetail  bool // Dashboard card drill-down
	loadGen     int  // generation of the newest page load in flight

	// Alerts
	alerts []Alert
}

// Alert represents a transient status message.
type Alert struct {
	Level   AlertLevel
	Message string
	Time    time.Time
}

// AlertLevel indicates the severity of an alert.
type AlertLevel int

const (
	AlertInfo AlertLevel = iota
	AlertWarning
	AlertCritical
)

// New creates a new App instance. When medicalData is non-empty the app
// starts on the read-only QR viewer; otherwise the start page depends on the
// persisted session.
func New(client *api.Client, cfg *config.Config, medicalData string) *App {
	a := &App{
		client:       client,
		config:       cfg,
		loginView:    auth.NewLoginView(),
		myPageView:   patient.NewMyPageView(client, cfg.Session.QRDir()),
		dashView:     admin.NewDashboardView(client),
		stockView:    admin.NewStockView(client),
		settingsView: admin.NewSettingsView(client),
		theme:        NewTheme(cfg.Display.ColorScheme),
		keys:         DefaultKeyMap(),
		alerts:       []Alert{},
	}
	a.settingsView.SetColorScheme(string(cfg.Display.ColorScheme))

	switch {
	case medicalData != "":
		a.medicalView = medical.NewViewerView(medicalData)
		a.currentPage = PageMedical
	case client.Session().IsAdmin():
		a.currentPage = PageDashboard
	case client.Session().IsUser():
		a.currentPage = PageMyPage
	default:
		a.currentPage = PageLogin
	}

	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.EnterAltScreen}
	if cmd := a.loadPage(a.currentPage); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

type loginResultMsg struct {
	userType models.UserType
	err      error
}

type pageLoadedMsg struct {
	page Page
	gen  int
	err  error
}

type stockUpdatedMsg struct {
	item *models.InventoryItem
	err  error
}

type settingsSavedMsg struct {
	settings *models.AdminSettings
	err      error
}

// redirectLoginMsg arrives after the session-expired alert has been visible
// for a moment.
type redirectLoginMsg struct{}

// loadPage returns the load command for a page, or nil for pages without
// one. Each load carries a generation so a stale result cannot trigger
// alerts or redirects after the user has moved on.
func (a *App) loadPage(page Page) tea.Cmd {
	var load func(context.Context) error
	switch page {
	case PageMyPage:
		load = a.myPageView.Load
	case PageDashboard:
		load = a.dashView.Load
	case PageInventory:
		load = a.stockView.Load
	case PageSettings:
		load = a.settingsView.Load
	default:
		return nil
	}

	a.loadGen++
	gen := a.loadGen
	return func() tea.Msg {
		return pageLoadedMsg{page: page, gen: gen, err: load(context.Background())}
	}
}

// login tries the patient endpoint first and falls back to the admin endpoint
// on any failure. When both fail the admin error is the one reported.
func (a *App) login(email, password string) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		if _, err := a.client.LoginUser(ctx, email, password); err == nil {
			return loginResultMsg{userType: models.UserTypeUser}
		}

		if _, err := a.client.LoginAdmin(ctx, email, password); err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{userType: models.UserTypeAdmin}
	}
}

// saveStock performs the stock update.
func (a *App) saveStock(update *admin.PendingUpdate) tea.Cmd {
	return func() tea.Msg {
		item, err := a.client.UpdateMedication(context.Background(), update.MedicationName, update.Quantity, update.Description)
		return stockUpdatedMsg{item: item, err: err}
	}
}

// applyColorScheme switches the theme to the scheme chosen in the settings
// form. The scheme is a client-side preference and is not sent to the server.
func (a *App) applyColorScheme() {
	scheme := config.ColorScheme(a.settingsView.ColorScheme())
	if scheme != "" && scheme != a.config.Display.ColorScheme {
		a.config.Display.ColorScheme = scheme
		a.theme = NewTheme(scheme)
	}
}

// saveSettings performs the settings save.
func (a *App) saveSettings(settings *models.AdminSettings) tea.Cmd {
	return func() tea.Msg {
		saved, err := a.client.SaveSettings(context.Background(), *settings)
		return settingsSavedMsg{settings: saved, err: err}
	}
}

// redirectToLogin shows the session alert, then sends the user back to the
// login page after a short delay.
func (a *App) redirectToLogin() tea.Cmd {
	a.AddAlert(AlertWarning, "Session expired, please log in again")
	return tea.Tick(1500*time.Millisecond, func(time.Time) tea.Msg {
		return redirectLoginMsg{}
	})
}

// loginErrorMessage maps a login failure to the message shown on the form.
func loginErrorMessage(err error) string {
	var authErr *api.AuthError
	if errors.As(err, &authErr) {
		switch {
		case authErr.Status == 401:
			return "Incorrect email or password"
		case authErr.Status >= 500:
			return "Server error, please try again later"
		}
		return authErr.Reason
	}
	return "Could not reach the server"
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		return a, nil

	case loginResultMsg:
		if msg.err != nil {
			a.loginView.SetError(loginErrorMessage(msg.err))
			return a, nil
		}
		a.loginView.Reset()
		if msg.userType == models.UserTypeAdmin {
			a.currentPage = PageDashboard
		} else {
			a.currentPage = PageMyPage
		}
		return a, a.loadPage(a.currentPage)

	case pageLoadedMsg:
		if msg.gen != a.loadGen {
			return a, nil
		}
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				return a, a.redirectToLogin()
			}
			a.AddAlert(AlertWarning, errorMessage(msg.err))
		}
		return a, nil

	case stockUpdatedMsg:
		if msg.err != nil {
			if api.IsAuthError(msg.err) {
				a.stockView.CancelEdit()
				return a, a.redirectToLogin()
			}
			a.AddAlert(AlertWarning, "Update failed: "+errorMessage(msg.err))
			return a, nil
		}
		a.stockView.ApplyUpdate(msg.item)
		a.AddAlert(AlertInfo, "Stock updated")
		return a, nil

	case settingsSavedMsg:
		if msg.err != nil && api.IsAuthError(msg.err) {
			return a, a.redirectToLogin()
		}
		a.settingsView.SetSaved(msg.settings, msg.err)
		if msg.err == nil {
			a.AddAlert(AlertInfo, "Settings saved")
		}
		return a, nil

	case redirectLoginMsg:
		a.client.Logout()
		a.loginView.Reset()
		a.currentPage = PageLogin
		a.showDetail = false
		return a, nil
	}

	return a, nil
}

// errorMessage maps an API error to a human message.
func errorMessage(err error) string {
	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Message()
	}
	var dataErr *api.DataFormatError
	if errors.As(err, &dataErr) {
		return dataErr.Detail
	}
	return err.Error()
}

// handleKeyPress processes key press events.
func (a *App) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit confirmation takes priority
	if a.showConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			a.quitting = true
			return a, tea.Quit
		case "n", "N", "esc":
			a.showConfirm = false
		}
		return a, nil
	}

	// Pages that swallow all input come before global keys
	switch a.currentPage {
	case PageLogin:
		return a.handleLoginKeys(msg)
	case PageInventory:
		if a.stockView.Editing() {
			if update := a.stockView.HandleEditKey(msg.String()); update != nil {
				return a, a.saveStock(update)
			}
			return a, nil
		}
		if a.stockView.SearchMode() {
			a.stockView.HandleSearchKey(msg.String())
			return a, nil
		}
	case PageSettings:
		if a.settingsView.Editing() {
			if settings := a.settingsView.HandleEditKey(msg.String()); settings != nil {
				a.applyColorScheme()
				return a, a.saveSettings(settings)
			}
			return a, nil
		}
	case PageMyPage:
		if a.myPageView.SearchMode() {
			a.myPageView.HandleSearchKey(msg.String())
			return a, nil
		}
	}

	// Global keys
	if a.keys.IsQuit(msg) {
		a.showConfirm = true
		return a, nil
	}

	if a.keys.Logout.Matches(msg) && a.currentPage != PageMedical {
		a.client.Logout()
		a.loginView.Reset()
		a.currentPage = PageLogin
		a.showDetail = false
		return a, nil
	}

	// Function key navigation between admin pages
	if a.keys.IsFunctionKey(msg) {
		switch a.keys.GetFunctionKeyPage(msg) {
		case "quit":
			a.showConfirm = true
			return a, nil
		case "dashboard":
			return a.gotoPage(PageDashboard)
		case "inventory":
			return a.gotoPage(PageInventory)
		case "settings":
			return a.gotoPage(PageSettings)
		}
		return a, nil
	}

	// Page-specific keys
	switch a.currentPage {
	case PageMyPage:
		return a.handleMyPageKeys(msg)
	case PageDashboard:
		return a.handleDashboardKeys(msg)
	case PageInventory:
		return a.handleInventoryKeys(msg)
	case PageSettings:
		return a.handleSettingsKeys(msg)
	}

	return a, nil
}

// gotoPage switches to an admin page, enforcing the admin session guard.
func (a *App) gotoPage(page Page) (tea.Model, tea.Cmd) {
	if a.currentPage == PageMedical || a.currentPage == PageLogin {
		return a, nil
	}
	if !a.client.Session().IsAdmin() {
		a.AddAlert(AlertWarning, "Administrator access required")
		return a, nil
	}
	a.currentPage = page
	a.showDetail = false
	return a, a.loadPage(page)
}

// handleLoginKeys handles the login page.
func (a *App) handleLoginKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "f10" {
		a.showConfirm = true
		return a, nil
	}
	if a.loginView.HandleKey(key) {
		a.loginView.SetBusy(true)
		return a, a.login(a.loginView.Email(), a.loginView.Password())
	}
	return a, nil
}

// handleMyPageKeys handles the patient page.
func (a *App) handleMyPageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "shift+tab":
		a.myPageView.PrevTab()
	case "right", "tab":
		a.myPageView.NextTab()
	case "/":
		a.myPageView.StartSearch()
	case "r":
		return a, a.loadPage(PageMyPage)
	}
	return a, nil
}

// handleDashboardKeys handles the dashboard page.
func (a *App) handleDashboardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.showDetail {
		if msg.String() == "esc" {
			a.showDetail = false
		}
		return a, nil
	}

	switch msg.String() {
	case "left", "h":
		a.dashView.MoveLeft()
	case "right", "l":
		a.dashView.MoveRight()
	case "enter":
		a.showDetail = true
	case "r":
		return a, a.loadPage(PageDashboard)
	}
	return a, nil
}

// handleInventoryKeys handles the stock manager page.
// Note: edit and search modes are handled in handleKeyPress before this.
func (a *App) handleInventoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.stockView.InDrillDown() {
		if msg.String() == "esc" {
			a.stockView.CloseDrillDown()
		}
		return a, nil
	}

	switch msg.String() {
	case "up", "k":
		a.stockView.MoveUp()
	case "down", "j":
		a.stockView.MoveDown()
	case "pgup":
		a.stockView.PageUp()
	case "pgdown":
		a.stockView.PageDown()
	case "left", "shift+tab":
		a.stockView.PrevTab()
	case "right", "tab":
		a.stockView.NextTab()
	case "enter":
		a.stockView.Select()
	case "e":
		if a.stockView.ActiveTab() != admin.TabOwnShelter {
			a.AddAlert(AlertWarning, "Only your own shelter's stock can be edited")
			return a, nil
		}
		a.stockView.StartEdit()
	case "s":
		a.stockView.ToggleSort()
	case "/":
		a.stockView.StartSearch()
	case "r":
		return a, a.loadPage(PageInventory)
	}
	return a, nil
}

// handleSettingsKeys handles the settings page.
// Note: edit mode is handled in handleKeyPress before this.
func (a *App) handleSettingsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "e":
		a.settingsView.StartEdit()
	case "r":
		return a, a.loadPage(PageSettings)
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initializing..."
	}

	if a.quitting {
		return a.theme.Title.Render("MediLink signing off...")
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")

	b.WriteString(a.renderAlertBar())
	b.WriteString("\n")

	contentHeight := ContentHeight(a.height, 6) // header, alert, footer
	if a.showConfirm {
		b.WriteString(a.renderConfirmDialog(contentHeight))
	} else {
		b.WriteString(a.renderContent(contentHeight))
	}

	b.WriteString("\n")
	b.WriteString(a.renderFooter())

	return b.String()
}

// renderHeader renders the top header bar.
func (a *App) renderHeader() string {
	title := fmt.Sprintf("MEDILINK SHELTER MEDICATION SYSTEM v%s", Version)

	var who string
	sess := a.client.Session()
	if profile := sess.Profile(); profile != nil && profile.Name != "" {
		who = fmt.Sprintf("%s (%s)", profile.Name, sess.UserType())
	} else {
		who = "not signed in"
	}

	whoWidth := a.width - lipgloss.Width(title) - 2
	if whoWidth < lipgloss.Width(who)+1 {
		whoWidth = lipgloss.Width(who) + 1
	}

	header := a.theme.Header.Render(title) +
		PadLeft(a.theme.Header.Render(who), whoWidth)

	separator := a.theme.DrawDoubleLine(a.width)

	return header + "\n" + separator
}

// renderAlertBar renders the latest alert, or an all-clear line.
func (a *App) renderAlertBar() string {
	timeStr := time.Now().Format(a.config.Display.DateFormat)

	var alertText string
	if len(a.alerts) > 0 {
		alert := a.alerts[0]
		alert.Message = Truncate(alert.Message, a.width-len(timeStr)-16)
		switch alert.Level {
		case AlertCritical:
			alertText = a.theme.AlertCrit.Render("CRITICAL: " + alert.Message)
		case AlertWarning:
			alertText = a.theme.AlertWarn.Render("WARNING: " + alert.Message)
		default:
			alertText = a.theme.Alert.Render("INFO: " + alert.Message)
		}
	} else {
		alertText = a.theme.Muted.Render("Ready")
	}

	timeDisplay := a.theme.Value.Render(timeStr)
	divider := a.theme.StatusDivider.Render()

	return timeDisplay + divider + alertText
}

// renderContent renders the main content area for the current page.
func (a *App) renderContent(height int) string {
	content := a.getPageContent()

	contentWidth := ContentWidth(a.width, 0, MaxContentWidth)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Top)

	contentStyle := lipgloss.NewStyle().
		Width(contentWidth)

	return style.Render(contentStyle.Render(content))
}

// getPageContent returns the content for the current page.
func (a *App) getPageContent() string {
	switch a.currentPage {
	case PageLogin:
		return a.loginView.Render(a.width, a.height-6)
	case PageMyPage:
		return a.myPageView.Render(a.width, a.height-6)
	case PageDashboard:
		if a.showDetail {
			return a.dashView.RenderDetail()
		}
		return a.dashView.Render(a.width, a.height-6)
	case PageInventory:
		return a.stockView.Render(a.width, a.height-6)
	case PageSettings:
		return a.settingsView.Render(a.width, a.height-6)
	case PageMedical:
		return a.medicalView.Render(a.width, a.height-6)
	default:
		return ""
	}
}

// renderConfirmDialog renders the quit confirmation dialog.
func (a *App) renderConfirmDialog(height int) string {
	dialog := a.theme.Box.Render(
		a.theme.Title.Render("CONFIRM EXIT") + "\n\n" +
			a.theme.Base.Render("Are you sure you want to exit?") + "\n\n" +
			a.theme.Label.Render("[Y]es  [N]o"),
	)

	style := lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center)

	return style.Render(dialog)
}

// renderFooter renders the bottom status bar.
func (a *App) renderFooter() string {
	separator := a.theme.DrawHorizontalLine(a.width)

	var help string
	switch a.currentPage {
	case PageLogin:
		help = "[Tab]Next field [Enter]Sign in [F10]Quit"
	case PageMyPage:
		help = "[Left/Right]Tab [/]Search [r]Refresh [Ctrl+L]Logout [F10]Quit"
	case PageMedical:
		help = "[F10]Quit"
	default:
		help = a.keys.StatusBarHelp()
	}

	return separator + "\n" + a.theme.Footer.Render(help)
}

// AddAlert adds a new alert to the display.
func (a *App) AddAlert(level AlertLevel, message string) {
	a.alerts = append([]Alert{{
		Level:   level,
		Message: message,
		Time:    time.Now(),
	}}, a.alerts...)

	// Keep only last 10 alerts
	if len(a.alerts) > 10 {
		a.alerts = a.alerts[:10]
	}
}

// ClearAlerts removes all alerts.
func (a *App) ClearAlerts() {
	a.alerts = []Alert{}
}

// Run starts the TUI application.
func Run(ctx context.Context, client *api.Client, cfg *config.Config, medicalData string) error {
	app := New(client, cfg, medicalData)

	p := tea.NewProgram(app, tea.WithAltScreen())

	// Handle context cancellation
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	_, err := p.Run()
	return err
}
