package tui

import (
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/avelis/worklog/internal/store"
)

// signinModel asks for a username and establishes the session. Submitting an
// existing username signs in as that user; a new one is created on the spot.
type signinModel struct {
	store  *store.Store
	width  int
	height int

	form     *huh.Form
	username *string
}

func newSigninModel(s *store.Store) signinModel {
	name := ""
	m := signinModel{store: s, username: &name}
	m.form = m.buildForm()
	return m
}

func (m signinModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Username").
				Description("2-50 characters; created on first sign-in").
				Value(m.username).
				Validate(validateUsername),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func validateUsername(v string) error {
	v = strings.TrimSpace(v)
	if len(v) < 2 {
		return errors.New("Username must be at least 2 characters long")
	}
	if len(v) > 50 {
		return errors.New("Username must be less than 50 characters")
	}
	return nil
}

func (m *signinModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m signinModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m signinModel) update(msg tea.Msg) (signinModel, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		username := strings.TrimSpace(*m.username)
		return m.reset(), func() tea.Msg {
			user, err := m.store.SignIn(username)
			if err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			if err := m.store.SetCurrentUser(user.ID); err != nil {
				return statusMsg{text: err.Error(), isError: true}
			}
			return signedInMsg{user: user}
		}
	}

	return m, cmd
}

// reset rebuilds the form so a failed sign-in (or a later sign-out) gets a
// fresh input.
func (m signinModel) reset() signinModel {
	*m.username = ""
	m.form = m.buildForm()
	return m
}

func (m signinModel) view() string {
	title := titleStyle.Render("worklog")
	subtitle := mutedStyle.Render("Track your daily progress and efforts")
	content := lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "", m.form.View())
	return panelStyle.Width(m.width - 4).Render(content)
}
