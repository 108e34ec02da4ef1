package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"chime/internal/config"
	"chime/internal/logging"
	"chime/internal/reminder"
	"chime/internal/storage"
	"chime/internal/task"
)

type mode int

const (
	modeList mode = iota
	modeAdd
	modeAlert
	modePermission
)

const (
	fieldName = iota
	fieldDate
	fieldTime
	fieldCount
)

const missingFieldsAlert = "Please fill in all fields"

type checkDueMsg time.Time

type bannerExpiredMsg struct {
	seq int
}

func checkDueCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return checkDueMsg(t)
	})
}

func bannerExpiredCmd(after time.Duration, seq int) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return bannerExpiredMsg{seq: seq}
	})
}

type Options struct {
	Store   *storage.Store
	Engine  *reminder.Engine
	Gate    reminder.Gate
	Keys    config.Keymap
	Timings config.Timings
	Logger  *log.Logger
}

// Model owns all view state. The task collection itself lives in the store;
// tasks is the display-ordered snapshot taken after every change.
type Model struct {
	store   *storage.Store
	engine  *reminder.Engine
	gate    reminder.Gate
	keys    config.Keymap
	timings config.Timings
	logger  *log.Logger
	now     func() time.Time

	tasks      []task.Task
	cursor     int
	mode       mode
	inputs     [fieldCount]textinput.Model
	focus      int
	status     string
	alert      string
	confirmDel bool
	pendingDel *task.Task
	banner     string
	bannerSeq  int
}

func New(opts Options) (Model, error) {
	if opts.Store == nil || opts.Engine == nil {
		return Model{}, errors.New("ui needs a store and an engine")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	tasks, err := opts.Store.Sorted()
	if err != nil {
		return Model{}, err
	}

	m := Model{
		store:   opts.Store,
		engine:  opts.Engine,
		gate:    opts.Gate,
		keys:    opts.Keys,
		timings: opts.Timings,
		logger:  logger,
		now:     time.Now,
		tasks:   tasks,
		cursor:  clampCursor(0, len(tasks)),
		inputs:  newInputs(),
		mode:    modeList,
		status:  fmt.Sprintf("Press '%s' to add a task.", keyLabel(opts.Keys.Add)),
	}
	if m.gate != nil && m.gate.Permission() == reminder.PermissionDefault {
		m.mode = modePermission
	}
	return m, nil
}

func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	program := tea.NewProgram(m)
	_, err = program.Run()
	return err
}

func newInputs() [fieldCount]textinput.Model {
	var inputs [fieldCount]textinput.Model

	name := textinput.New()
	name.Placeholder = "Enter task name..."
	name.CharLimit = 256
	name.Width = 40
	inputs[fieldName] = name

	date := textinput.New()
	date.Placeholder = "YYYY-MM-DD"
	date.CharLimit = len(task.DateLayout)
	date.Width = 12
	inputs[fieldDate] = date

	clock := textinput.New()
	clock.Placeholder = "HH:MM"
	clock.CharLimit = len("15:04:05")
	clock.Width = 10
	inputs[fieldTime] = clock

	return inputs
}

func (m Model) Init() tea.Cmd {
	return checkDueCmd(m.timings.CheckInterval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case checkDueMsg:
		return m.handleCheckDue(time.Time(msg))
	case bannerExpiredMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch {
		case m.mode == modePermission:
			return m.updatePermission(msg.String())
		case m.mode == modeAlert:
			return m.dismissAlert()
		case m.confirmDel:
			return m.updateDeleteConfirm(msg.String())
		case m.mode == modeAdd:
			return m.updateAddMode(msg)
		}
		return m.updateListMode(msg.String())
	case tea.WindowSizeMsg:
		if w := msg.Width - 10; w > 0 {
			m.inputs[fieldName].Width = w
		}
	}
	return m, nil
}

func (m Model) handleCheckDue(t time.Time) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{checkDueCmd(m.timings.CheckInterval)}

	fired, err := m.engine.Evaluate(t)
	if err != nil {
		m.logger.Error("reminder check failed", "err", err)
		m.status = fmt.Sprintf("reminder check failed: %v", err)
	}
	if len(fired) == 0 {
		return m, tea.Batch(cmds...)
	}

	m.reload(m.selectedID())
	m.banner = fired[len(fired)-1].Banner
	m.bannerSeq++
	cmds = append(cmds, bannerExpiredCmd(m.timings.BannerDuration, m.bannerSeq))
	return m, tea.Batch(cmds...)
}

func (m Model) updatePermission(key string) (tea.Model, tea.Cmd) {
	var granted bool
	switch key {
	case "y", "Y":
		granted = true
	case "n", "N", "esc":
		granted = false
	default:
		return m, nil
	}
	p := m.gate.Resolve(granted)
	m.mode = modeList
	if p == reminder.PermissionGranted {
		m.status = "Desktop notifications enabled"
	} else {
		m.status = "Desktop notifications disabled; reminders show here only"
	}
	return m, nil
}

func (m Model) updateListMode(key string) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Quit:
		return m, tea.Quit
	case m.keys.Down, "down":
		if len(m.tasks) == 0 {
			return m, nil
		}
		m.cursor = clampCursor(m.cursor+1, len(m.tasks))
	case m.keys.Up, "up":
		if m.cursor > 0 {
			m.cursor = clampCursor(m.cursor-1, len(m.tasks))
		}
	case m.keys.Add:
		m.mode = modeAdd
		m.status = fmt.Sprintf("New task: %s to move between fields, %s to save, %s to cancel",
			keyLabel(m.keys.NextField), keyLabel(m.keys.Confirm), keyLabel(m.keys.Cancel))
		cmd := m.setFocus(fieldName)
		return m, cmd
	case m.keys.Toggle:
		if len(m.tasks) == 0 {
			return m, nil
		}
		id := m.tasks[m.cursor].ID
		t, err := m.store.ToggleComplete(id)
		if err != nil {
			m.status = fmt.Sprintf("toggle failed: %v", err)
			return m, nil
		}
		m.reload(id)
		if t.Completed {
			m.status = "Marked complete"
		} else {
			m.status = "Reopened task"
		}
	case m.keys.Delete:
		if len(m.tasks) == 0 {
			return m, nil
		}
		t := m.tasks[m.cursor]
		m.confirmDel = true
		m.pendingDel = &t
		m.status = fmt.Sprintf("Delete %q? y/n", t.Name)
	}
	return m, nil
}

func (m Model) updateAddMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case m.keys.Cancel:
		m.resetForm()
		m.mode = modeList
		m.status = "Cancelled"
		return m, nil
	case m.keys.NextField:
		cmd := m.setFocus((m.focus + 1) % fieldCount)
		return m, cmd
	case m.keys.PrevField:
		cmd := m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, cmd
	case m.keys.Confirm:
		if m.focus < fieldTime {
			cmd := m.setFocus(m.focus + 1)
			return m, cmd
		}
		return m.submit()
	default:
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	t, err := m.store.Add(task.Draft{
		Name: m.inputs[fieldName].Value(),
		Date: m.inputs[fieldDate].Value(),
		Time: m.inputs[fieldTime].Value(),
	})
	if err != nil {
		m.mode = modeAlert
		if errors.Is(err, task.ErrMissingField) {
			m.alert = missingFieldsAlert
		} else {
			m.alert = err.Error()
		}
		return m, nil
	}
	m.logger.Info("task added", "id", t.ID, "task", t.Name, "due", t.Due().Format(time.RFC3339))
	m.resetForm()
	m.mode = modeList
	m.reload(t.ID)
	m.status = "Added task"
	return m, nil
}

// dismissAlert returns to the form with its values intact, focused on the
// first empty field.
func (m Model) dismissAlert() (tea.Model, tea.Cmd) {
	m.alert = ""
	m.mode = modeAdd
	target := m.focus
	for i := range m.inputs {
		if strings.TrimSpace(m.inputs[i].Value()) == "" {
			target = i
			break
		}
	}
	cmd := m.setFocus(target)
	return m, cmd
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Delete cancelled"
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	case "y", "Y":
		if m.pendingDel == nil {
			m.status = "Nothing to delete"
			m.confirmDel = false
			return m, nil
		}
		if err := m.store.DeleteTask(m.pendingDel.ID); err != nil {
			m.status = fmt.Sprintf("delete failed: %v", err)
		} else {
			m.logger.Info("task deleted", "id", m.pendingDel.ID)
			m.reload(0)
			m.status = "Deleted task"
		}
		m.confirmDel = false
		m.pendingDel = nil
		return m, nil
	default:
		return m, nil
	}
}

// reload refreshes the display snapshot and keeps the cursor on selectID
// when it is still present.
func (m *Model) reload(selectID int64) {
	tasks, err := m.store.Sorted()
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	m.tasks = tasks
	if i := task.IndexOf(tasks, selectID); i >= 0 {
		m.cursor = i
	}
	m.cursor = clampCursor(m.cursor, len(m.tasks))
}

func (m Model) selectedID() int64 {
	if len(m.tasks) == 0 {
		return 0
	}
	return m.tasks[clampCursor(m.cursor, len(m.tasks))].ID
}

func (m *Model) setFocus(i int) tea.Cmd {
	m.focus = i
	var cmd tea.Cmd
	for j := range m.inputs {
		if j == i {
			cmd = m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
	return cmd
}

func (m *Model) resetForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.focus = fieldName
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
