package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelis/worklog/internal/export"
	"github.com/avelis/worklog/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	width  int
	height int

	user *store.User

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	signin  signinModel
	board   boardModel
	reports reportsModel

	help      help.Model
	status    string
	statusErr bool
}

func NewApp(s *store.Store) App {
	h := help.New()
	h.ShowAll = false

	return App{
		store:      s,
		activeView: viewBoard,
		signin:     newSigninModel(s),
		board:      newBoardModel(s),
		reports:    newReportsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.signin.Init(),
		a.restoreSession(),
	)
}

// restoreSession resumes the previous sign-in, if one is stored.
func (a App) restoreSession() tea.Cmd {
	return func() tea.Msg {
		user, err := a.store.CurrentUser()
		if err != nil || user == nil {
			return nil
		}
		return signedInMsg{user: user}
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.signin.setSize(a.width, contentHeight)
		a.board.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		return a, nil

	case signedInMsg:
		a.user = msg.user
		a.board.setUser(msg.user.ID)
		a.reports.setUser(msg.user.ID)
		a.activeView = viewBoard
		a.setStatus(fmt.Sprintf("Signed in as %s", msg.user.Username), false)
		return a, a.board.refresh()

	case signedOutMsg:
		a.user = nil
		a.signin = a.signin.reset()
		a.setStatus("Signed out", false)
		return a, a.signin.Init()

	case boardDataMsg:
		var cmd tea.Cmd
		a.board, cmd = a.board.update(msg)
		return a, cmd

	case reportsDataMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case recordSavedMsg:
		if msg.created {
			a.setStatus(fmt.Sprintf("Created %s", msg.ticket), false)
		} else {
			a.setStatus(fmt.Sprintf("Updated %s", msg.ticket), false)
		}
		return a, a.board.refresh()

	case recordDeletedMsg:
		a.setStatus(fmt.Sprintf("Successfully deleted %s", msg.ticket), false)
		return a, a.board.refresh()

	case movedMsg:
		a.setStatus(fmt.Sprintf("Successfully moved %s to today", msg.ticket), false)
		return a, a.board.refresh()

	case bulkMovedMsg:
		if msg.failed > 0 {
			a.setStatus(fmt.Sprintf("Moved %d items to today, %d failed", msg.moved, msg.failed), true)
		} else {
			a.setStatus(fmt.Sprintf("Successfully moved %d items to today", msg.moved), false)
		}
		return a, a.board.refresh()

	case statusMsg:
		a.setStatus(msg.text, msg.isError)
		return a, nil

	case exportDoneMsg:
		a.setStatus("Exported to "+msg.path, false)
		a.exportPicking = false
		return a, nil

	case tea.KeyMsg:
		if a.user == nil {
			// The sign-in form owns the keyboard; only ctrl+c gets through.
			if msg.String() == "ctrl+c" {
				return a, tea.Quit
			}
			var cmd tea.Cmd
			a.signin, cmd = a.signin.update(msg)
			return a, cmd
		}

		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// An open form or overlay captures input before global bindings.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.SignOut):
			return a, a.signOut()
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewBoard
			return a, a.board.refresh()
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 2
			return a, a.refreshCurrentView()
		}
	}

	if a.user == nil {
		var cmd tea.Cmd
		a.signin, cmd = a.signin.update(msg)
		return a, cmd
	}
	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewBoard:
		a.board, cmd = a.board.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	if a.activeView != viewBoard {
		return false
	}
	return a.board.form.active || a.board.confirm != confirmNone || a.board.copying
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewBoard:
		return a.board.refresh()
	case viewReports:
		return a.reports.refresh()
	}
	return nil
}

func (a App) signOut() tea.Cmd {
	return func() tea.Msg {
		if err := a.store.ClearCurrentUser(); err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return signedOutMsg{}
	}
}

func (a *App) setStatus(text string, isError bool) {
	a.status = text
	a.statusErr = isError
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	if a.user == nil {
		content = a.signin.view()
	} else {
		switch a.activeView {
		case viewBoard:
			content = a.board.view()
		case viewReports:
			content = a.reports.view()
		}
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

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
	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("worklog")

	var tabRow string
	if a.user != nil {
		var tabs []string
		for i, name := range viewNames {
			if viewState(i) == a.activeView {
				tabs = append(tabs, activeTabStyle.Render(name))
			} else {
				tabs = append(tabs, inactiveTabStyle.Render(name))
			}
		}
		tabRow = lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
	}

	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := ""
	if a.user != nil {
		helpView = a.help.View(keys)
	}

	status := ""
	if a.status != "" {
		if a.statusErr {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	userInfo := ""
	if a.user != nil {
		userInfo = highlightStyle.Render(" ● " + a.user.Username)
	}

	left := footerStyle.Render(helpView)
	right := status + userInfo

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV", "JSON"}
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
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
	userID := a.user.ID
	return func() tea.Msg {
		statuses, err := a.store.ListStatuses(userID)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("worklog-export-%s.csv", dateStr))
			if err := export.ToCSV(statuses, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			path = filepath.Join(home, fmt.Sprintf("worklog-export-%s.json", dateStr))
			if err := export.ToJSON(statuses, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
