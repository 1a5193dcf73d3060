package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/auth"
	"github.com/Lillogorillo/Beam-App/internal/cloudsync"
	"github.com/Lillogorillo/Beam-App/internal/export"
	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/remote"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

// Deps is everything the UI drives. Client, Gateway and Trigger are nil
// when sync is disabled.
type Deps struct {
	Ctx      context.Context
	Store    *store.Store
	Settings pomodoro.SettingsSink
	Machine  *pomodoro.Machine
	Recorder *pomodoro.Recorder
	Notifier *Notifier

	Session  *auth.Session
	Client   *remote.Client
	Gateway  *cloudsync.Gateway
	Trigger  *cloudsync.Trigger
	SyncInfo [][2]string

	// ExportDir defaults to the home directory.
	ExportDir string
}

// App is the root Bubble Tea model.
type App struct {
	deps   Deps
	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	tasks     tasksModel
	timer     timerModel
	dashboard dashboardModel
	settings  settingsModel
	account   accountModel

	help     help.Model
	status   string
	statusOK bool
}

func NewApp(d Deps) App {
	if d.Ctx == nil {
		d.Ctx = context.Background()
	}
	if d.Notifier == nil {
		d.Notifier = NewNotifier()
	}
	d.Machine.Subscribe(d.Notifier.SessionEnded)

	h := help.New()
	h.ShowAll = false

	return App{
		deps:       d,
		activeView: viewTasks,
		tasks:      newTasksModel(d.Store, d.Machine),
		timer:      newTimerModel(d.Machine, d.Recorder, d.Store),
		dashboard:  newDashboardModel(d.Store),
		settings:   newSettingsModel(d.Machine, d.Settings, d.SyncInfo),
		account:    newAccountModel(d.Ctx, d.Client, d.Session, d.Trigger),
		help:       h,
		statusOK:   true,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.tasks.refresh(),
		tickCmd(),
		a.deps.Notifier.listen(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.tasks.setSize(a.width, contentHeight)
		a.timer.setSize(a.width, contentHeight)
		a.dashboard.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		a.account.setSize(a.width, contentHeight)
		return a, nil

	case tea.FocusMsg:
		return a, a.visibility(false)

	case tea.BlurMsg:
		return a, a.visibility(true)

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// A child view capturing input (e.g. form) gets keys first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Sync):
			return a, a.manualSync()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewTasks)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewTimer)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewDashboard)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewAccount)
		case key.Matches(msg, keys.Tab):
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		// The machine counts down on its own goroutine; ticks only redraw.
		a.timer, _ = a.timer.update(msg)
		cmds := []tea.Cmd{tickCmd()}
		// Remote pulls replace the store behind our back.
		if !a.isFormActive() {
			cmds = append(cmds, a.refreshCurrentView())
		}
		return a, tea.Batch(cmds...)

	case sessionEndedMsg:
		a.timer, _ = a.timer.update(msg)
		a.setStatus(fmt.Sprintf("%s finished. %s is next \a", msg.Ended, msg.Next), true)
		return a, tea.Batch(a.deps.Notifier.listen(), a.refreshCurrentView())

	case taskCompletedMsg:
		a.setStatus(fmt.Sprintf("Completed %q \a", msg.title), true)
		return a, a.deps.Notifier.listen()

	case timerStartedMsg:
		a.activeView = viewTimer
		a.timer.sync()
		a.setStatus("Focusing on "+msg.task, true)
		return a, nil

	case syncDoneMsg:
		if msg.err != nil {
			a.setStatus(fmt.Sprintf("Sync (%s) failed: %v", msg.trigger, msg.err), false)
		} else {
			a.setStatus("Synced", true)
		}
		return a, a.refreshCurrentView()

	case statusMsg:
		a.setStatus(msg.text, !msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, true)
		a.exportPicking = false
		return a, nil

	case loginDoneMsg:
		var cmd tea.Cmd
		a.account, cmd = a.account.update(msg)
		return a, cmd

	case tasksDataMsg:
		var cmd tea.Cmd
		a.tasks, cmd = a.tasks.update(msg)
		return a, cmd

	case dashboardDataMsg:
		var cmd tea.Cmd
		a.dashboard, cmd = a.dashboard.update(msg)
		return a, cmd

	case settingsDataMsg:
		var cmd tea.Cmd
		a.settings, cmd = a.settings.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

func (a *App) setStatus(text string, ok bool) {
	a.status = text
	a.statusOK = ok
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	if v == viewTimer {
		a.timer.sync()
	}
	return a, a.refreshCurrentView()
}

// visibility reports terminal focus changes to the sync trigger. Gaining
// focus counts both as becoming visible and as a focus event; the two
// pulls run independently.
func (a App) visibility(hidden bool) tea.Cmd {
	t := a.deps.Trigger
	if t == nil {
		return nil
	}
	ctx := a.deps.Ctx
	visible := func() tea.Msg {
		if err := t.VisibilityChanged(ctx, hidden); err != nil {
			return syncDoneMsg{trigger: "visible", err: err}
		}
		return nil
	}
	if hidden {
		return visible
	}
	focus := func() tea.Msg {
		if err := t.FocusGained(ctx); err != nil {
			return syncDoneMsg{trigger: "focus", err: err}
		}
		return nil
	}
	return tea.Batch(visible, focus)
}

func (a App) manualSync() tea.Cmd {
	g := a.deps.Gateway
	if g == nil {
		return func() tea.Msg { return statusMsg{text: "Sync is disabled", isError: true} }
	}
	if !a.account.signedIn() {
		return func() tea.Msg { return statusMsg{text: "Sign in to sync (press 5)", isError: true} }
	}
	ctx := a.deps.Ctx
	return func() tea.Msg {
		return syncDoneMsg{trigger: "manual", err: g.LoadFromRemote(ctx)}
	}
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	case viewAccount:
		a.account, cmd = a.account.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewTasks:
		return a.tasks.formActive
	case viewSettings:
		return a.settings.formActive
	case viewAccount:
		return a.account.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewTasks:
		return a.tasks.refresh()
	case viewDashboard:
		return a.dashboard.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTasks:
		content = a.tasks.view()
	case viewTimer:
		content = a.timer.view()
	case viewDashboard:
		content = a.dashboard.view()
	case viewSettings:
		content = a.settings.view()
	case viewAccount:
		content = a.account.view()
	}

	contentHeight := max(a.height-lipgloss.Height(header)-lipgloss.Height(footer), 1)

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("beam")
	if a.account.enabled() {
		if a.account.signedIn() {
			title += successStyle.Render(" ●")
		} else {
			title += mutedStyle.Render(" ○")
		}
	}
	gap := max(a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusOK {
			status = mutedStyle.Render(" " + a.status)
		} else {
			status = errorStyle.Render(" " + a.status)
		}
	}

	timerInfo := a.timer.indicator()
	if timerInfo != "" {
		timerInfo = " " + timerInfo
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := max(a.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

var exportFormats = []string{"Sessions (CSV)", "Everything (JSON)"}

func (a App) renderExportPicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Export"), "")
	for i, f := range exportFormats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	return activePanelStyle.Width(a.width - 4).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(exportFormats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	s := a.deps.Store
	dir := a.deps.ExportDir
	return func() tea.Msg {
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
			}
			dir = home
		}
		date := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(dir, fmt.Sprintf("beam-sessions-%s.csv", date))
			if err := export.SessionsCSV(s.TimeSessions(), s.Tasks(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(dir, fmt.Sprintf("beam-export-%s.json", date))
			if err := export.StateJSON(s.Snapshot(), path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
