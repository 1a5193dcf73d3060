package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Lillogorillo/Beam-App/internal/auth"
	"github.com/Lillogorillo/Beam-App/internal/cloudsync"
	"github.com/Lillogorillo/Beam-App/internal/pomodoro"
	"github.com/Lillogorillo/Beam-App/internal/remote"
	"github.com/Lillogorillo/Beam-App/internal/store"
)

func newTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.NewMemoryDB()
	if err != nil {
		t.Fatalf("new memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestStore(t *testing.T, db *store.DB) *store.Store {
	t.Helper()
	s, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(s.Wait)
	return s
}

type testEnv struct {
	db      *store.DB
	store   *store.Store
	machine *pomodoro.Machine
	rec     *pomodoro.Recorder
	session *auth.Session
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	db := newTestDB(t)
	s := newTestStore(t, db)
	m := pomodoro.New(pomodoro.DefaultSettings())
	sess, err := auth.Restore(db)
	if err != nil {
		t.Fatalf("restore session: %v", err)
	}
	return testEnv{db: db, store: s, machine: m, rec: pomodoro.NewRecorder(m, s, nil), session: sess}
}

func (e testEnv) app(t *testing.T) App {
	t.Helper()
	a := NewApp(Deps{
		Store:     e.store,
		Settings:  e.db,
		Machine:   e.machine,
		Recorder:  e.rec,
		Session:   e.session,
		ExportDir: t.TempDir(),
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m.(App)
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var spaceKey = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}

func mustAddTask(t *testing.T, s *store.Store, in store.NewTask) store.Task {
	t.Helper()
	task, err := s.AddTask(in)
	if err != nil {
		t.Fatalf("add task: %v", err)
	}
	return task
}

// ============================================================
// Tasks view
// ============================================================

func loadedTasks(t *testing.T, e testEnv) tasksModel {
	t.Helper()
	tm := newTasksModel(e.store, e.machine)
	tm.setSize(120, 36)
	tm, _ = tm.update(tm.refresh()())
	return tm
}

func TestTasksToggleAndDelete(t *testing.T) {
	e := newTestEnv(t)
	a := mustAddTask(t, e.store, store.NewTask{Title: "Write report"})
	b := mustAddTask(t, e.store, store.NewTask{Title: "Call Ana"})

	tm := loadedTasks(t, e)
	if len(tm.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tm.tasks))
	}

	tm, cmd := tm.update(spaceKey)
	if cmd == nil {
		t.Fatal("toggle should refresh")
	}
	tm, _ = tm.update(cmd())
	if got, _ := e.store.Task(a.ID); !got.Completed {
		t.Fatal("first task should be completed")
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyDown})
	tm, cmd = tm.update(runeKey('d'))
	tm, _ = tm.update(cmd())
	if _, ok := e.store.Task(b.ID); ok {
		t.Fatal("second task should be deleted")
	}
	if tm.cursor != 0 {
		t.Fatalf("cursor should clamp to 0, got %d", tm.cursor)
	}
}

func TestTasksFilterByCategory(t *testing.T) {
	e := newTestEnv(t)
	deep, err := e.store.AddCategory("Deep work", "#3B82F6", "briefcase")
	if err != nil {
		t.Fatal(err)
	}
	mustAddTask(t, e.store, store.NewTask{Title: "Deploy", Category: deep.ID})
	mustAddTask(t, e.store, store.NewTask{Title: "Groceries"})

	tm := loadedTasks(t, e)
	if n := len(tm.visible()); n != 2 {
		t.Fatalf("all filter: expected 2, got %d", n)
	}

	tm, _ = tm.update(runeKey('f'))
	if tm.filterName() != "Today" {
		t.Fatalf("expected Today filter, got %q", tm.filterName())
	}
	if n := len(tm.visible()); n != 2 {
		t.Fatalf("today filter: expected 2, got %d", n)
	}

	// Seeded categories come first; step through them to ours.
	for _, c := range tm.categories {
		tm, _ = tm.update(runeKey('f'))
		if c.ID == deep.ID {
			break
		}
		if n := len(tm.visible()); n != 0 {
			t.Fatalf("category %q: expected no tasks, got %d", c.Name, n)
		}
	}
	if tm.filterName() != "Deep work" {
		t.Fatalf("expected Deep work filter, got %q", tm.filterName())
	}
	visible := tm.visible()
	if len(visible) != 1 || visible[0].Title != "Deploy" {
		t.Fatalf("category filter: %+v", visible)
	}

	tm, _ = tm.update(runeKey('f'))
	if tm.filterName() != "All" {
		t.Fatal("filter should wrap back to All")
	}
}

func TestTasksSubtaskView(t *testing.T) {
	e := newTestEnv(t)
	task := mustAddTask(t, e.store, store.NewTask{Title: "Move house"})
	sub, _ := e.store.AddSubtask(task.ID, "Pack books")

	tm := loadedTasks(t, e)
	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyEnter})
	if !tm.viewingSubtasks {
		t.Fatal("enter should open subtasks")
	}
	if !strings.Contains(tm.view(), "Pack books") {
		t.Fatal("subtask view should list subtasks")
	}

	tm, cmd := tm.update(spaceKey)
	tm, _ = tm.update(cmd())
	got, _ := e.store.Task(task.ID)
	if len(got.Subtasks) != 1 || got.Subtasks[0].ID != sub.ID || !got.Subtasks[0].Completed {
		t.Fatalf("subtask should be completed: %+v", got.Subtasks)
	}

	tm, _ = tm.update(tea.KeyMsg{Type: tea.KeyEsc})
	if tm.viewingSubtasks {
		t.Fatal("esc should close subtasks")
	}
}

func TestTasksEditPatchHoldsChangesOnly(t *testing.T) {
	e := newTestEnv(t)
	task := mustAddTask(t, e.store, store.NewTask{Title: "Draft", Priority: store.PriorityLow})

	tm := loadedTasks(t, e)
	tm, _ = tm.showTaskForm(formEditTask, task)
	*tm.formTitle = "Final draft"
	*tm.formEstimate = "45"

	patch := tm.patchFor(task)
	if patch.Title == nil || *patch.Title != "Final draft" {
		t.Fatal("title change missing from patch")
	}
	if patch.EstimatedTime == nil || *patch.EstimatedTime != 45 {
		t.Fatal("estimate change missing from patch")
	}
	if patch.Priority != nil || patch.Description != nil || patch.Category != nil || patch.DueDate != nil {
		t.Fatalf("unchanged fields leaked into patch: %+v", patch)
	}
}

func TestTasksSubmitUnchangedEditKeepsTask(t *testing.T) {
	db := newTestDB(t)
	now := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	s, err := store.New(db, store.WithClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	}))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(s.Wait)
	e := testEnv{db: db, store: s, machine: pomodoro.New(pomodoro.DefaultSettings())}
	task := mustAddTask(t, s, store.NewTask{Title: "Draft", Priority: store.PriorityHigh})

	tm := loadedTasks(t, e)
	tm, _ = tm.showTaskForm(formEditTask, task)
	if err := tm.submit(); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Task(task.ID)
	if !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("unchanged edit touched the task: updated %v, was %v", got.UpdatedAt, task.UpdatedAt)
	}

	tm, _ = tm.showTaskForm(formEditTask, got)
	*tm.formTitle = "Final"
	if err := tm.submit(); err != nil {
		t.Fatal(err)
	}
	if got, _ = s.Task(task.ID); got.Title != "Final" || !got.UpdatedAt.After(task.UpdatedAt) {
		t.Fatalf("edit not applied: %+v", got)
	}
}

func TestTasksSubmitNewTask(t *testing.T) {
	e := newTestEnv(t)
	tm := loadedTasks(t, e)
	tm, _ = tm.showTaskForm(formNewTask, store.Task{Priority: store.PriorityMedium})
	*tm.formTitle = "Plan sprint"
	*tm.formPriority = string(store.PriorityHigh)
	*tm.formDue = "2026-11-02"

	if err := tm.submit(); err != nil {
		t.Fatal(err)
	}
	tasks := e.store.Tasks()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Priority != store.PriorityHigh || got.DueDate == nil || got.DueDate.Day() != 2 {
		t.Fatalf("unexpected task: %+v", got)
	}
}

func TestFormValidators(t *testing.T) {
	if required("  ") == nil {
		t.Error("blank should be rejected")
	}
	if validDate("2026-13-01") == nil {
		t.Error("bad month should be rejected")
	}
	if validDate("") != nil {
		t.Error("empty date is allowed")
	}
	if validMinutes("-5") == nil {
		t.Error("negative minutes should be rejected")
	}
	if validMinutes("30") != nil {
		t.Error("30 should be accepted")
	}
}

func TestTasksStartFocusesTimer(t *testing.T) {
	e := newTestEnv(t)
	task := mustAddTask(t, e.store, store.NewTask{Title: "Read paper"})
	a := e.app(t)

	m, cmd := a.Update(a.tasks.refresh()())
	a = m.(App)
	m, cmd = a.Update(runeKey('s'))
	a = m.(App)
	if cmd == nil {
		t.Fatal("start should emit a command")
	}

	st := e.machine.Snapshot()
	if !st.Running || st.TaskID != task.ID {
		t.Fatalf("machine should run for the task: %+v", st)
	}

	m, _ = a.Update(cmd())
	a = m.(App)
	if a.activeView != viewTimer {
		t.Fatal("starting a task should switch to the timer")
	}
	if !strings.Contains(a.View(), "Read paper") {
		t.Fatal("timer view should show the task title")
	}
}

// ============================================================
// Timer view
// ============================================================

func TestTimerStopRecordsWork(t *testing.T) {
	e := newTestEnv(t)
	task := mustAddTask(t, e.store, store.NewTask{Title: "Code review"})
	e.machine.Start(task.ID)
	for range 90 {
		e.machine.Tick()
	}

	tm := newTimerModel(e.machine, e.rec, e.store)
	tm, cmd := tm.update(runeKey('x'))
	if cmd == nil {
		t.Fatal("stop should report status")
	}

	sessions := e.store.TimeSessions()
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if sessions[0].TaskID != task.ID || sessions[0].Duration != 90 {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
	if tm.state.Running || tm.state.TimeLeft != 25*60 {
		t.Fatalf("timer should be rewound: %+v", tm.state)
	}
}

func TestTimerPauseResume(t *testing.T) {
	e := newTestEnv(t)
	tm := newTimerModel(e.machine, e.rec, e.store)

	tm, _ = tm.update(runeKey('s'))
	if !tm.state.Running {
		t.Fatal("s should start")
	}
	tm, _ = tm.update(spaceKey)
	if tm.state.Running {
		t.Fatal("space should pause")
	}
	tm, _ = tm.update(spaceKey)
	if !tm.state.Running {
		t.Fatal("space should resume")
	}
	if tm.indicator() == "" {
		t.Fatal("running timer should show a footer indicator")
	}
}

func TestTimerSkipAndProgress(t *testing.T) {
	e := newTestEnv(t)
	tm := newTimerModel(e.machine, e.rec, e.store)

	tm, _ = tm.update(runeKey('>'))
	if tm.state.SessionType != pomodoro.ShortBreak {
		t.Fatalf("skip should move to a short break, got %s", tm.state.SessionType)
	}
	if got := strings.Count(tm.renderProgress(), "●"); got != 1 {
		t.Fatalf("expected 1 filled dot, got %d", got)
	}

	tm, _ = tm.update(runeKey('R'))
	if tm.state.SessionType != pomodoro.Work || tm.state.TotalSessions != 0 {
		t.Fatalf("reset should restore the initial state: %+v", tm.state)
	}
}

func TestAppTickRedrawsTimer(t *testing.T) {
	e := newTestEnv(t)
	a := e.app(t)
	e.machine.Start("")
	e.machine.Tick()

	m, _ := a.Update(tickMsg(time.Now()))
	a = m.(App)
	if a.timer.state.TimeLeft != 25*60-1 {
		t.Fatalf("expected one second less, got %d", a.timer.state.TimeLeft)
	}
}

// ============================================================
// Dashboard
// ============================================================

func TestDashboardCompletionRate(t *testing.T) {
	e := newTestEnv(t)
	for i, done := range []bool{true, true, true, false} {
		mustAddTask(t, e.store, store.NewTask{Title: "task " + string(rune('a'+i)), Completed: done})
	}

	d := newDashboardModel(e.store)
	d.setSize(120, 36)
	d, _ = d.update(d.refresh()())

	if d.stats.TotalTasks != 4 || d.stats.CompletedTasks != 3 {
		t.Fatalf("unexpected stats: %+v", d.stats)
	}
	if !strings.Contains(d.view(), "75%") {
		t.Fatal("dashboard should show 75% completion")
	}
	if len(d.days) != chartDays {
		t.Fatalf("expected %d chart days, got %d", chartDays, len(d.days))
	}
}

func TestDashboardChartWithSessions(t *testing.T) {
	e := newTestEnv(t)
	end := time.Now()
	e.store.AddTimeSession(store.TimeSession{
		StartTime: end.Add(-30 * time.Minute),
		EndTime:   &end,
		Duration:  1800,
		Type:      store.SessionWork,
	})

	d := newDashboardModel(e.store)
	d.setSize(120, 36)
	d, _ = d.update(d.refresh()())
	out := d.view()
	if strings.Contains(out, "No focus sessions") {
		t.Fatal("chart should render once sessions exist")
	}
	if !strings.Contains(out, "30m focused") {
		t.Fatal("chart header should total the week")
	}
}

// ============================================================
// Settings
// ============================================================

func TestSettingsApply(t *testing.T) {
	e := newTestEnv(t)
	s := newSettingsModel(e.machine, e.db, nil)

	if err := s.apply("50", "10", "20", "3"); err != nil {
		t.Fatal(err)
	}
	got := e.machine.Settings()
	if got.WorkDuration != 50 || got.SessionsUntilLongBreak != 3 {
		t.Fatalf("machine not updated: %+v", got)
	}
	v, err := e.db.GetSetting("pomodoro_work")
	if err != nil || v != "50" {
		t.Fatalf("work duration not persisted: %q %v", v, err)
	}

	s, _ = s.update(s.refresh()())
	s.setSize(120, 36)
	if !strings.Contains(s.view(), "50 min") {
		t.Fatal("view should show the new work duration")
	}
}

func TestSettingsApplyRejectsInvalid(t *testing.T) {
	e := newTestEnv(t)
	s := newSettingsModel(e.machine, e.db, nil)

	for _, in := range [][4]string{
		{"0", "5", "15", "4"},
		{"25", "abc", "15", "4"},
	} {
		err := s.apply(in[0], in[1], in[2], in[3])
		if !errors.Is(err, pomodoro.ErrInvalidSettings) {
			t.Fatalf("apply(%v) = %v, want ErrInvalidSettings", in, err)
		}
	}
	if got := e.machine.Settings(); got != pomodoro.DefaultSettings() {
		t.Fatalf("settings should be unchanged: %+v", got)
	}
}

// ============================================================
// Account
// ============================================================

func TestAccountDisabled(t *testing.T) {
	e := newTestEnv(t)
	a := e.app(t)
	a.activeView = viewAccount
	if !strings.Contains(a.View(), "Sync is disabled") {
		t.Fatal("account view should say sync is disabled")
	}

	_, cmd := a.Update(runeKey('r'))
	msg, ok := cmd().(statusMsg)
	if !ok || !msg.isError || msg.text != "Sync is disabled" {
		t.Fatalf("unexpected sync reply: %+v", msg)
	}
}

func TestAccountSignInAndOut(t *testing.T) {
	e := newTestEnv(t)
	acc := newAccountModel(t.Context(), remote.New("http://127.0.0.1:0"), e.session, nil)
	acc.setSize(120, 36)

	if !strings.Contains(acc.view(), "Not signed in") {
		t.Fatal("should start signed out")
	}

	acc, _ = acc.update(loginDoneMsg{err: remote.ErrUnauthorized})
	if acc.signedIn() {
		t.Fatal("failed login must not sign in")
	}

	acc, _ = acc.update(loginDoneMsg{token: "tok-1", user: remote.User{ID: "u1", Email: "ana@example.com"}})
	if tok, ok := e.session.Token(); !ok || tok != "tok-1" {
		t.Fatal("session should hold the token")
	}
	if !strings.Contains(acc.view(), "ana@example.com") {
		t.Fatal("view should show the signed in user")
	}

	restored, err := auth.Restore(e.db)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := restored.Token(); !ok {
		t.Fatal("token should survive a restart")
	}

	acc, _ = acc.update(runeKey('o'))
	if acc.signedIn() {
		t.Fatal("o should sign out")
	}
}

// ============================================================
// App model
// ============================================================

func TestNewApp(t *testing.T) {
	a := newTestEnv(t).app(t)

	if a.activeView != viewTasks {
		t.Fatal("default view should be tasks")
	}
	if a.showHelp {
		t.Fatal("help should be hidden by default")
	}
	if a.exportPicking {
		t.Fatal("export picker should be hidden by default")
	}
	if a.isFormActive() {
		t.Fatal("no forms should be active initially")
	}
}

func TestAppViewStates(t *testing.T) {
	a := newTestEnv(t).app(t)
	for v := range viewNames {
		a.activeView = viewState(v)
		if a.View() == "" {
			t.Fatalf("view %d rendered empty", v)
		}
	}
}

func TestAppTabKeys(t *testing.T) {
	a := newTestEnv(t).app(t)
	for i, r := range []rune{'1', '2', '3', '4', '5'} {
		m, _ := a.Update(runeKey(r))
		a = m.(App)
		if a.activeView != viewState(i) {
			t.Fatalf("key %c: view %d, want %d", r, a.activeView, i)
		}
	}
	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.(App).activeView != viewTasks {
		t.Fatal("tab should wrap to the first view")
	}
}

func TestAppRenderHeaderContainsAllTabs(t *testing.T) {
	a := newTestEnv(t).app(t)
	header := a.renderHeader()
	if !strings.Contains(header, "beam") {
		t.Fatal("header should carry the app name")
	}
	for _, name := range viewNames {
		if !strings.Contains(header, name) {
			t.Fatalf("header missing tab %q", name)
		}
	}
}

func TestAppLoadingState(t *testing.T) {
	e := newTestEnv(t)
	a := NewApp(Deps{Store: e.store, Settings: e.db, Machine: e.machine, Recorder: e.rec})
	if out := a.View(); out != "Loading..." {
		t.Fatalf("expected 'Loading...', got %q", out)
	}
}

func TestAppStatusMessage(t *testing.T) {
	a := newTestEnv(t).app(t)
	m, _ := a.Update(statusMsg{text: "test status"})
	a = m.(App)
	if !strings.Contains(a.renderFooter(), "test status") {
		t.Fatal("footer should contain status message")
	}

	m, _ = a.Update(syncDoneMsg{trigger: "manual", err: errors.New("offline")})
	a = m.(App)
	if a.statusOK || !strings.Contains(a.status, "offline") {
		t.Fatalf("sync failure should be an error status: %q", a.status)
	}
}

func TestAppSessionEnded(t *testing.T) {
	a := newTestEnv(t).app(t)
	m, cmd := a.Update(sessionEndedMsg{Ended: pomodoro.Work, Next: pomodoro.ShortBreak, CurrentSession: 1})
	a = m.(App)
	if cmd == nil {
		t.Fatal("the notifier must be listened to again")
	}
	if !strings.Contains(a.status, "Work finished") {
		t.Fatalf("unexpected status %q", a.status)
	}
}

func TestAppFocusWithoutSync(t *testing.T) {
	a := newTestEnv(t).app(t)
	if _, cmd := a.Update(tea.FocusMsg{}); cmd != nil {
		t.Fatal("focus without a trigger should do nothing")
	}
	if _, cmd := a.Update(tea.BlurMsg{}); cmd != nil {
		t.Fatal("blur without a trigger should do nothing")
	}
}

type failingPuller struct {
	calls atomic.Int32
}

func (p *failingPuller) LoadFromRemote(context.Context) error {
	p.calls.Add(1)
	return errors.New("offline")
}

type staticToken string

func (s staticToken) Token() (string, bool) { return string(s), true }

func TestAppFocusRunsBothPulls(t *testing.T) {
	e := newTestEnv(t)
	puller := &failingPuller{}
	a := NewApp(Deps{
		Ctx:       context.Background(),
		Store:     e.store,
		Settings:  e.db,
		Machine:   e.machine,
		Recorder:  e.rec,
		Session:   e.session,
		Trigger:   cloudsync.NewTrigger(puller, staticToken("tok")),
		ExportDir: t.TempDir(),
	})

	m, cmd := a.Update(tea.BlurMsg{})
	if cmd == nil {
		t.Fatal("blur should report visibility")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("hiding should not pull, got %#v", msg)
	}

	_, cmd = m.(App).Update(tea.FocusMsg{})
	if cmd == nil {
		t.Fatal("focus should pull")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("focus should batch the visibility and focus pulls")
	}
	var triggers []string
	for _, c := range batch {
		if c == nil {
			continue
		}
		done, ok := c().(syncDoneMsg)
		if !ok || done.err == nil {
			t.Fatalf("expected a failed pull, got %#v", done)
		}
		triggers = append(triggers, done.trigger)
	}
	if strings.Join(triggers, ",") != "visible,focus" {
		t.Fatalf("triggers = %v", triggers)
	}
	if n := puller.calls.Load(); n != 2 {
		t.Fatalf("pulls = %d, want 2", n)
	}
}

func TestAppExport(t *testing.T) {
	e := newTestEnv(t)
	task := mustAddTask(t, e.store, store.NewTask{Title: "Export me"})
	end := time.Now()
	e.store.AddTimeSession(store.TimeSession{TaskID: task.ID, StartTime: end.Add(-time.Minute), EndTime: &end, Duration: 60, Type: store.SessionWork})
	a := e.app(t)

	for format, suffix := range []string{".csv", ".json"} {
		msg, ok := a.doExport(format)().(exportDoneMsg)
		if !ok {
			t.Fatalf("format %d: export failed", format)
		}
		if !strings.HasSuffix(msg.path, suffix) {
			t.Fatalf("unexpected path %q", msg.path)
		}
		data, err := os.ReadFile(msg.path)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "Export me") {
			t.Fatalf("%s export should mention the task", suffix)
		}
	}
}

func TestAppExportPicker(t *testing.T) {
	a := newTestEnv(t).app(t)
	m, _ := a.Update(runeKey('e'))
	a = m.(App)
	if !a.exportPicking {
		t.Fatal("e should open the export picker")
	}
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.(App).exportPicking {
		t.Fatal("esc should close the picker")
	}
}

// ============================================================
// Notifier
// ============================================================

func TestNotifierDelivers(t *testing.T) {
	n := NewNotifier()
	n.TaskCompleted(store.Task{Title: "Ship it"})
	msg, ok := n.listen()().(taskCompletedMsg)
	if !ok || msg.title != "Ship it" {
		t.Fatalf("unexpected message %+v", msg)
	}
}

func TestNotifierNeverBlocks(t *testing.T) {
	n := NewNotifier()
	done := make(chan struct{})
	go func() {
		for range 100 {
			n.SessionEnded(pomodoro.Event{Ended: pomodoro.Work})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("notifier blocked with nobody listening")
	}
}

// ============================================================
// Helpers
// ============================================================

func TestFormatClock(t *testing.T) {
	tests := []struct {
		secs int
		want string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{60, "01:00"},
		{25 * 60, "25:00"},
		{5*60 + 30, "05:30"},
		{-1, "00:00"},
	}
	for _, tt := range tests {
		if got := formatClock(tt.secs); got != tt.want {
			t.Errorf("formatClock(%d) = %q, want %q", tt.secs, got, tt.want)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	if got := formatMinutes(45); got != "45m" {
		t.Errorf("got %q", got)
	}
	if got := formatMinutes(90); got != "1.5h" {
		t.Errorf("got %q", got)
	}
	if got := formatSeconds(3725); got != "01:02:05" {
		t.Errorf("got %q", got)
	}
}

// ============================================================
// Key bindings
// ============================================================

func TestKeyMapShortHelp(t *testing.T) {
	if len(keys.ShortHelp()) == 0 {
		t.Fatal("short help should have bindings")
	}
}

func TestKeyMapFullHelp(t *testing.T) {
	groups := keys.FullHelp()
	if len(groups) == 0 {
		t.Fatal("full help should have groups")
	}
	for i, g := range groups {
		if len(g) == 0 {
			t.Fatalf("full help group %d is empty", i)
		}
	}
}

// ============================================================
// Styles (smoke test, just verify they don't panic)
// ============================================================

func TestStylesRender(t *testing.T) {
	styles := []struct {
		name string
		fn   func() string
	}{
		{"activeTab", func() string { return activeTabStyle.Render("test") }},
		{"inactiveTab", func() string { return inactiveTabStyle.Render("test") }},
		{"panel", func() string { return panelStyle.Render("test") }},
		{"activePanel", func() string { return activePanelStyle.Render("test") }},
		{"timer", func() string { return timerStyle.Render("test") }},
		{"timerRunning", func() string { return timerRunningStyle.Render("test") }},
		{"timerPaused", func() string { return timerPausedStyle.Render("test") }},
		{"title", func() string { return titleStyle.Render("test") }},
		{"accent", func() string { return accentStyle.Render("test") }},
		{"success", func() string { return successStyle.Render("test") }},
		{"warning", func() string { return warningStyle.Render("test") }},
		{"error", func() string { return errorStyle.Render("test") }},
		{"muted", func() string { return mutedStyle.Render("test") }},
		{"highlight", func() string { return highlightStyle.Render("test") }},
		{"done", func() string { return doneStyle.Render("test") }},
		{"header", func() string { return headerStyle.Render("test") }},
		{"footer", func() string { return footerStyle.Render("test") }},
		{"selectedItem", func() string { return selectedItemStyle.Render("test") }},
		{"normalItem", func() string { return normalItemStyle.Render("test") }},
		{"priority", func() string { return priorityBadge("high") }},
	}

	for _, s := range styles {
		if s.fn() == "" {
			t.Fatalf("style %q rendered empty", s.name)
		}
	}
}
