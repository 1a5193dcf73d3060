package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/auth"
	"github.com/Lillogorillo/Beam-App/internal/cloudsync"
	"github.com/Lillogorillo/Beam-App/internal/remote"
)

type accountModel struct {
	ctx     context.Context
	client  *remote.Client
	session *auth.Session
	trigger *cloudsync.Trigger
	width   int
	height  int

	busy       bool
	formActive bool
	form       *huh.Form

	email    *string
	password *string
}

func newAccountModel(ctx context.Context, c *remote.Client, s *auth.Session, t *cloudsync.Trigger) accountModel {
	email, password := "", ""
	return accountModel{
		ctx:      ctx,
		client:   c,
		session:  s,
		trigger:  t,
		email:    &email,
		password: &password,
	}
}

func (a *accountModel) setSize(w, h int) {
	a.width = w
	a.height = h
}

func (a accountModel) enabled() bool {
	return a.client != nil && a.session != nil
}

func (a accountModel) signedIn() bool {
	if a.session == nil {
		return false
	}
	_, ok := a.session.Token()
	return ok
}

func (a accountModel) update(msg tea.Msg) (accountModel, tea.Cmd) {
	if a.formActive && a.form != nil {
		return a.updateForm(msg)
	}

	switch msg := msg.(type) {
	case loginDoneMsg:
		a.busy = false
		if msg.err != nil {
			return a, errorStatus(fmt.Errorf("sign in: %w", msg.err))
		}
		if err := a.session.SignIn(msg.token, msg.user); err != nil {
			return a, errorStatus(err)
		}
		return a, tea.Batch(
			func() tea.Msg { return statusMsg{text: "Signed in as " + msg.user.Email} },
			a.pull("sign-in"),
		)

	case tea.KeyMsg:
		if !a.enabled() || a.busy {
			return a, nil
		}
		switch {
		case key.Matches(msg, keys.Enter):
			if !a.signedIn() {
				return a.showForm()
			}
		case key.Matches(msg, keys.SignOut):
			if a.signedIn() {
				if err := a.session.SignOut(); err != nil {
					return a, errorStatus(err)
				}
				return a, func() tea.Msg { return statusMsg{text: "Signed out"} }
			}
		}
	}
	return a, nil
}

// pull loads remote data once a credential is present.
func (a accountModel) pull(reason string) tea.Cmd {
	if a.trigger == nil {
		return nil
	}
	ctx, t := a.ctx, a.trigger
	return func() tea.Msg {
		return syncDoneMsg{trigger: reason, err: t.CredentialAcquired(ctx)}
	}
}

func (a accountModel) showForm() (accountModel, tea.Cmd) {
	*a.password = ""
	a.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Email").Value(a.email).Validate(required),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(a.password).Validate(required),
		).Title("Sign in"),
	).WithShowHelp(true).WithShowErrors(true)

	a.formActive = true
	return a, a.form.Init()
}

func (a accountModel) updateForm(msg tea.Msg) (accountModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			a.formActive = false
			a.form = nil
			return a, nil
		}
	}

	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	if a.form.State == huh.StateCompleted {
		a.formActive = false
		a.busy = true
		ctx, c := a.ctx, a.client
		email, password := strings.TrimSpace(*a.email), *a.password
		*a.password = ""
		return a, func() tea.Msg {
			token, user, err := c.Login(ctx, email, password)
			return loginDoneMsg{token: token, user: user, err: err}
		}
	}

	return a, cmd
}

func (a accountModel) view() string {
	w := a.width - 4
	title := titleStyle.Render("Account")

	if !a.enabled() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("Sync is disabled. Set BEAM_API_URL or pass -api to enable it."),
			mutedStyle.Render("Your data is kept on this machine."),
		))
	}

	if a.formActive && a.form != nil {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", a.form.View()))
	}

	if a.busy {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", mutedStyle.Render("Signing in...")))
	}

	if !a.signedIn() {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			warningStyle.Render("Not signed in"),
			mutedStyle.Render("Changes stay local until you sign in."),
			"",
			mutedStyle.Render("Press enter to sign in"),
		))
	}

	user, _ := a.session.User()
	name := user.Name
	if name == "" {
		name = user.Email
	}
	rows := []string{
		title,
		"",
		successStyle.Render("● Signed in"),
		fmt.Sprintf("  %s  %s", mutedStyle.Render("User "), highlightStyle.Render(name)),
	}
	if user.Email != "" && user.Email != name {
		rows = append(rows, fmt.Sprintf("  %s  %s", mutedStyle.Render("Email"), user.Email))
	}
	rows = append(rows, "", mutedStyle.Render("r: sync now  o: sign out"))
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
