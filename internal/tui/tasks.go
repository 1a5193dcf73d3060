package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

var categoryColors = []string{"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6", "#EC4899", "#14B8A6", "#6B7280"}
var categoryIcons = []string{"folder", "briefcase", "user", "book-open", "heart", "home", "star", "code"}

const dateLayout = "2006-01-02"

type formKind int

const (
	formNone formKind = iota
	formNewTask
	formEditTask
	formCategory
	formSubtask
)

type tasksModel struct {
	store   *store.Store
	machine *pomodoro.Machine
	width   int
	height  int

	tasks      []store.Task
	categories []store.Category
	cursor     int
	filter     int // 0 all, 1 today, 2+ category index + 2

	viewingSubtasks bool
	subCursor       int

	formActive bool
	form       *huh.Form
	formKind   formKind
	editingID  string

	// Form field pointers (survive value copies)
	formTitle    *string
	formDesc     *string
	formPriority *string
	formCategory *string
	formDue      *string
	formEstimate *string
	formColor    *string
	formIcon     *string
}

func newTasksModel(s *store.Store, m *pomodoro.Machine) tasksModel {
	title, desc, prio, cat, due, est, color, icon := "", "", "", "", "", "", "", ""
	return tasksModel{
		store:        s,
		machine:      m,
		formTitle:    &title,
		formDesc:     &desc,
		formPriority: &prio,
		formCategory: &cat,
		formDue:      &due,
		formEstimate: &est,
		formColor:    &color,
		formIcon:     &icon,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type tasksDataMsg struct {
	tasks      []store.Task
	categories []store.Category
}

type timerStartedMsg struct {
	task string
}

func (p tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		return tasksDataMsg{tasks: p.store.Tasks(), categories: p.store.Categories()}
	}
}

// visible applies the current filter.
func (p tasksModel) visible() []store.Task {
	switch {
	case p.filter == 1:
		today := make(map[string]bool)
		for _, t := range p.store.TodayTasks() {
			today[t.ID] = true
		}
		var out []store.Task
		for _, t := range p.tasks {
			if today[t.ID] {
				out = append(out, t)
			}
		}
		return out
	case p.filter >= 2 && p.filter-2 < len(p.categories):
		return p.store.TasksByCategory(p.categories[p.filter-2].ID)
	}
	return p.tasks
}

func (p tasksModel) filterName() string {
	switch {
	case p.filter == 1:
		return "Today"
	case p.filter >= 2 && p.filter-2 < len(p.categories):
		return p.categories[p.filter-2].Name
	}
	return "All"
}

func (p tasksModel) selected() (store.Task, bool) {
	tasks := p.visible()
	if p.cursor < 0 || p.cursor >= len(tasks) {
		return store.Task{}, false
	}
	return tasks[p.cursor], true
}

func (p tasksModel) categoryName(id string) (string, string) {
	for _, c := range p.categories {
		if c.ID == id {
			return c.Name, c.Color
		}
	}
	return "", ""
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tasksDataMsg); ok {
		return p.load(msg), nil
	}
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if p.viewingSubtasks {
			return p.updateSubtaskView(msg)
		}
		return p.updateTaskList(msg)
	}
	return p, nil
}

func (p tasksModel) load(msg tasksDataMsg) tasksModel {
	p.tasks = msg.tasks
	p.categories = msg.categories
	if p.filter-2 >= len(p.categories) {
		p.filter = 0
	}
	if n := len(p.visible()); p.cursor >= n {
		p.cursor = max(0, n-1)
	}
	if t, ok := p.selected(); ok && p.subCursor >= len(t.Subtasks) {
		p.subCursor = max(0, len(t.Subtasks)-1)
	}
	return p
}

func (p tasksModel) updateTaskList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.visible())-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Filter):
		p.filter = (p.filter + 1) % (len(p.categories) + 2)
		p.cursor = 0
	case key.Matches(msg, keys.Enter):
		if _, ok := p.selected(); ok {
			p.viewingSubtasks = true
			p.subCursor = 0
		}
	case key.Matches(msg, keys.Toggle):
		if t, ok := p.selected(); ok {
			p.store.ToggleTask(t.ID)
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := p.selected(); ok {
			p.store.DeleteTask(t.ID)
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Start):
		if t, ok := p.selected(); ok {
			p.machine.Start(t.ID)
			return p, func() tea.Msg { return timerStartedMsg{task: t.Title} }
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm(formNewTask, store.Task{Priority: store.PriorityMedium})
	case key.Matches(msg, keys.Edit):
		if t, ok := p.selected(); ok {
			return p.showTaskForm(formEditTask, t)
		}
	case key.Matches(msg, keys.Category):
		return p.showCategoryForm()
	}
	return p, nil
}

func (p tasksModel) updateSubtaskView(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	t, ok := p.selected()
	if !ok {
		p.viewingSubtasks = false
		return p, nil
	}

	switch {
	case key.Matches(msg, keys.Back):
		p.viewingSubtasks = false
	case key.Matches(msg, keys.Up):
		if p.subCursor > 0 {
			p.subCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.subCursor < len(t.Subtasks)-1 {
			p.subCursor++
		}
	case key.Matches(msg, keys.New):
		*p.formTitle = ""
		p.formKind = formSubtask
		p.form = huh.NewForm(
			huh.NewGroup(
				huh.NewInput().Title("Subtask").Value(p.formTitle).Validate(required),
			),
		).WithShowHelp(true).WithShowErrors(true)
		p.formActive = true
		return p, p.form.Init()
	case key.Matches(msg, keys.Toggle):
		if p.subCursor < len(t.Subtasks) {
			p.store.ToggleSubtask(t.ID, t.Subtasks[p.subCursor].ID)
			return p, p.refresh()
		}
	case key.Matches(msg, keys.Delete):
		if p.subCursor < len(t.Subtasks) {
			p.store.DeleteSubtask(t.ID, t.Subtasks[p.subCursor].ID)
			return p, p.refresh()
		}
	}
	return p, nil
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("required")
	}
	return nil
}

func validDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.ParseInLocation(dateLayout, s, time.Local); err != nil {
		return errors.New("use YYYY-MM-DD")
	}
	return nil
}

func validMinutes(s string) error {
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err != nil || n < 0 {
		return errors.New("whole minutes")
	}
	return nil
}

func (p tasksModel) showTaskForm(kind formKind, t store.Task) (tasksModel, tea.Cmd) {
	*p.formTitle = t.Title
	*p.formDesc = t.Description
	*p.formPriority = string(t.Priority)
	*p.formCategory = t.Category
	*p.formDue = ""
	if t.DueDate != nil {
		*p.formDue = t.DueDate.Local().Format(dateLayout)
	}
	*p.formEstimate = ""
	if t.EstimatedTime > 0 {
		*p.formEstimate = strconv.Itoa(t.EstimatedTime)
	}
	p.formKind = kind
	p.editingID = t.ID

	catOptions := []huh.Option[string]{huh.NewOption("None", "")}
	for _, c := range p.categories {
		catOptions = append(catOptions, huh.NewOption(c.Name, c.ID))
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(p.formTitle).Validate(required),
			huh.NewText().Title("Description").Value(p.formDesc).Lines(3),
			huh.NewSelect[string]().Title("Priority").
				Options(
					huh.NewOption("Low", string(store.PriorityLow)),
					huh.NewOption("Medium", string(store.PriorityMedium)),
					huh.NewOption("High", string(store.PriorityHigh)),
				).Value(p.formPriority),
			huh.NewSelect[string]().Title("Category").Options(catOptions...).Value(p.formCategory),
			huh.NewInput().Title("Due date (YYYY-MM-DD)").Value(p.formDue).Validate(validDate),
			huh.NewInput().Title("Estimate (min)").Value(p.formEstimate).Validate(validMinutes),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) showCategoryForm() (tasksModel, tea.Cmd) {
	*p.formTitle = ""
	*p.formColor = categoryColors[0]
	*p.formIcon = categoryIcons[0]
	p.formKind = formCategory

	colorOptions := make([]huh.Option[string], len(categoryColors))
	for i, c := range categoryColors {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Render("●")
		colorOptions[i] = huh.NewOption(fmt.Sprintf("%s %s", dot, c), c)
	}
	iconOptions := make([]huh.Option[string], len(categoryIcons))
	for i, ic := range categoryIcons {
		iconOptions[i] = huh.NewOption(ic, ic)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(p.formTitle).Validate(required),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
			huh.NewSelect[string]().Title("Icon").Options(iconOptions...).Value(p.formIcon),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State == huh.StateCompleted {
		p.formActive = false
		if err := p.submit(); err != nil {
			return p, tea.Batch(errorStatus(err), p.refresh())
		}
		return p, p.refresh()
	}

	return p, cmd
}

// submit applies the completed form to the store.
func (p tasksModel) submit() error {
	switch p.formKind {
	case formNewTask:
		_, err := p.store.AddTask(store.NewTask{
			Title:         *p.formTitle,
			Description:   strings.TrimSpace(*p.formDesc),
			Priority:      store.Priority(*p.formPriority),
			Category:      *p.formCategory,
			DueDate:       parseDue(*p.formDue),
			EstimatedTime: atoi(*p.formEstimate),
		})
		return err
	case formEditTask:
		t, ok := p.store.Task(p.editingID)
		if !ok {
			return nil
		}
		patch := p.patchFor(t)
		if patch.Empty() {
			return nil
		}
		return p.store.UpdateTask(t.ID, patch)
	case formCategory:
		_, err := p.store.AddCategory(*p.formTitle, *p.formColor, *p.formIcon)
		return err
	case formSubtask:
		if t, ok := p.selected(); ok {
			p.store.AddSubtask(t.ID, *p.formTitle)
		}
	}
	return nil
}

// patchFor builds a patch holding only the fields the form changed.
func (p tasksModel) patchFor(t store.Task) store.TaskPatch {
	var patch store.TaskPatch
	if title := strings.TrimSpace(*p.formTitle); title != t.Title {
		patch.Title = &title
	}
	if desc := strings.TrimSpace(*p.formDesc); desc != t.Description {
		patch.Description = &desc
	}
	if prio := store.Priority(*p.formPriority); prio != t.Priority {
		patch.Priority = &prio
	}
	if cat := *p.formCategory; cat != t.Category {
		patch.Category = &cat
	}
	if due := parseDue(*p.formDue); due != nil && (t.DueDate == nil || !due.Equal(*t.DueDate)) {
		patch.DueDate = due
	}
	if est := atoi(*p.formEstimate); est != t.EstimatedTime {
		patch.EstimatedTime = &est
	}
	return patch
}

func parseDue(s string) *time.Time {
	if s == "" {
		return nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return nil
	}
	return &d
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (p tasksModel) view() string {
	if p.formActive && p.form != nil {
		var title string
		switch p.formKind {
		case formEditTask:
			title = "Edit Task"
		case formCategory:
			title = "New Category"
		case formSubtask:
			title = "New Subtask"
		default:
			title = "New Task"
		}
		content := lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingSubtasks {
		if t, ok := p.selected(); ok {
			return p.renderSubtaskView(t)
		}
	}
	return p.renderTaskList()
}

func (p tasksModel) renderTaskList() string {
	w := p.width - 4
	title := titleStyle.Render("Tasks") + "  " + mutedStyle.Render("["+p.filterName()+"]")
	tasks := p.visible()

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks here. Press n to create one."),
			"",
			mutedStyle.Render("  n: new  c: new category  f: filter"),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	for i, t := range tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		name := style.Render(t.Title)
		if t.Completed {
			check = successStyle.Render("[✓]")
			name = doneStyle.Render(t.Title)
		}

		row := fmt.Sprintf("%s%s %s  %s", cursor, check, name, priorityBadge(string(t.Priority)))
		if cat, color := p.categoryName(t.Category); cat != "" {
			dot := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("●")
			row += "  " + dot + " " + mutedStyle.Render(cat)
		}
		if t.DueDate != nil {
			row += mutedStyle.Render("  due " + t.DueDate.Local().Format("Jan 02"))
		}
		if n := len(t.Subtasks); n > 0 {
			done := 0
			for _, st := range t.Subtasks {
				if st.Completed {
					done++
				}
			}
			row += mutedStyle.Render(fmt.Sprintf("  %d/%d", done, n))
		}
		rows = append(rows, row)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  u: edit  space: done  d: delete  s: focus  enter: subtasks  c: category  f: filter"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p tasksModel) renderSubtaskView(t store.Task) string {
	w := p.width - 4
	title := titleStyle.Render(t.Title + " / Subtasks")

	var rows []string
	rows = append(rows, title)
	if t.Description != "" {
		rows = append(rows, mutedStyle.Render(t.Description))
	}
	rows = append(rows, "")

	if len(t.Subtasks) == 0 {
		rows = append(rows, mutedStyle.Render("No subtasks. Press n to add one."))
	}
	for i, st := range t.Subtasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.subCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		check := "[ ]"
		name := style.Render(st.Title)
		if st.Completed {
			check = successStyle.Render("[✓]")
			name = doneStyle.Render(st.Title)
		}
		rows = append(rows, fmt.Sprintf("%s%s %s", cursor, check, name))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new subtask  space: toggle  d: delete  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
