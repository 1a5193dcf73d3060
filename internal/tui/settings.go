package tui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
)

type settingsModel struct {
	machine *pomodoro.Machine
	sink    pomodoro.SettingsSink
	width   int
	height  int

	current pomodoro.Settings
	// sync lines shown under the timer settings
	syncInfo [][2]string

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	work      *string
	short     *string
	long      *string
	untilLong *string
}

func newSettingsModel(m *pomodoro.Machine, sink pomodoro.SettingsSink, syncInfo [][2]string) settingsModel {
	w, sb, lb, n := "", "", "", ""
	return settingsModel{
		machine:   m,
		sink:      sink,
		current:   m.Settings(),
		syncInfo:  syncInfo,
		work:      &w,
		short:     &sb,
		long:      &lb,
		untilLong: &n,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings pomodoro.Settings
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return settingsDataMsg{settings: s.machine.Settings()}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		s.current = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func positiveInt(v string) error {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return errors.New("enter a whole number above zero")
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.work = strconv.Itoa(s.current.WorkDuration)
	*s.short = strconv.Itoa(s.current.ShortBreakDuration)
	*s.long = strconv.Itoa(s.current.LongBreakDuration)
	*s.untilLong = strconv.Itoa(s.current.SessionsUntilLongBreak)

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Work (min)").Value(s.work).Validate(positiveInt),
			huh.NewInput().Title("Short break (min)").Value(s.short).Validate(positiveInt),
			huh.NewInput().Title("Long break (min)").Value(s.long).Validate(positiveInt),
			huh.NewInput().Title("Sessions before long break").Value(s.untilLong).Validate(positiveInt),
		).Title("Pomodoro"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.apply(*s.work, *s.short, *s.long, *s.untilLong); err != nil {
			return s, errorStatus(err)
		}
		return s, tea.Batch(s.refresh(), func() tea.Msg { return statusMsg{text: "Settings saved"} })
	}

	return s, cmd
}

// apply updates the running machine and persists the result. New
// durations take effect from the next session.
func (s settingsModel) apply(work, short, long, untilLong string) error {
	var patch pomodoro.SettingsPatch
	for _, f := range []struct {
		raw string
		dst **int
	}{
		{work, &patch.WorkDuration},
		{short, &patch.ShortBreakDuration},
		{long, &patch.LongBreakDuration},
		{untilLong, &patch.SessionsUntilLongBreak},
	} {
		n, err := strconv.Atoi(f.raw)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", pomodoro.ErrInvalidSettings, f.raw)
		}
		*f.dst = &n
	}
	if err := s.machine.UpdateSettings(patch); err != nil {
		return err
	}
	return pomodoro.SaveSettings(s.sink, s.machine.Settings())
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	row := func(label, value string) string {
		return fmt.Sprintf("  %s %s", lipgloss.NewStyle().Width(28).Render(label), highlightStyle.Render(value))
	}

	rows := []string{
		title,
		"",
		accentStyle.Render("Pomodoro"),
		row("Work", fmt.Sprintf("%d min", s.current.WorkDuration)),
		row("Short break", fmt.Sprintf("%d min", s.current.ShortBreakDuration)),
		row("Long break", fmt.Sprintf("%d min", s.current.LongBreakDuration)),
		row("Sessions before long break", strconv.Itoa(s.current.SessionsUntilLongBreak)),
	}
	if len(s.syncInfo) > 0 {
		rows = append(rows, "", accentStyle.Render("Sync"))
		for _, kv := range s.syncInfo {
			rows = append(rows, row(kv[0], kv[1]))
		}
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit the timer"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}
