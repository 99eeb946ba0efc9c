package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/keybridge/bridge"
	"github.com/wippyai/keybridge/dom"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7D56F4")).
			Padding(0, 2)

	pressedStyle = buttonStyle.
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	inertStyle = buttonStyle.
			BorderForeground(lipgloss.Color("#444444")).
			Foreground(lipgloss.Color("#666666"))

	keyDownStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	keyUpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// Buttons start on the third screen line and are three lines tall.
const (
	buttonRow    = 2
	buttonHeight = 3
)

type keyMap struct {
	Tap  key.Binding
	Blur key.Binding
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tap, k.Blur, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Tap: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"),
		key.WithHelp("1-9/click", "tap control"),
	),
	Blur: key.NewBinding(
		key.WithKeys("b"),
		key.WithHelp("b", "blur surface"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// eventLog keeps the most recent lines for display. Listeners append to it
// from inside Update, so View always sees the events a gesture produced.
type eventLog struct {
	mu    sync.Mutex
	lines []string
	max   int
}

func newEventLog(size int) *eventLog {
	return &eventLog{max: size}
}

func (l *eventLog) add(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, line)
	if len(l.lines) > l.max {
		l.lines = l.lines[len(l.lines)-l.max:]
	}
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.lines))
	copy(out, l.lines)
	return out
}

type loadedMsg struct {
	err error
}

type tuiModel struct {
	ctx     context.Context
	app     *app
	log     *eventLog
	help    help.Model
	loadErr error
	pressed string
	loaded  bool
}

func newTUIModel(ctx context.Context, a *app, log *eventLog) *tuiModel {
	a.observeKeys(func(ev dom.Event) {
		style := keyDownStyle
		if ev.Type == dom.KeyUp {
			style = keyUpStyle
		}
		log.add(style.Render(formatKey(ev)))
	})
	return &tuiModel{
		ctx:  ctx,
		app:  a,
		log:  log,
		help: help.New(),
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.app.start(m.ctx)
	return m.waitLoad
}

func (m *tuiModel) waitLoad() tea.Msg {
	task := m.app.bridge.LoadTask()
	if task == nil {
		return loadedMsg{}
	}
	return loadedMsg{err: task.Err()}
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Blur):
			m.app.doc.Blur()
		case key.Matches(msg, keys.Tap):
			n, _ := strconv.Atoi(msg.String())
			buttons := m.layout()
			if n >= 1 && n <= len(buttons) {
				m.trigger(buttons[n-1].id, m.app.bridge.Tap)
			}
		}

	case tea.MouseMsg:
		m.mouse(tea.MouseEvent(msg))

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case loadedMsg:
		m.loaded = true
		m.loadErr = msg.err
	}

	return m, nil
}

func (m *tuiModel) mouse(ev tea.MouseEvent) {
	switch ev.Action {
	case tea.MouseActionPress:
		if ev.Button != tea.MouseButtonLeft {
			return
		}
		if id := m.hit(ev.X, ev.Y); id != "" {
			m.pressed = id
			m.gesture(id, dom.PointerDown)
		}

	case tea.MouseActionRelease:
		if m.pressed == "" {
			return
		}
		id := m.pressed
		m.pressed = ""
		if m.hit(ev.X, ev.Y) != id {
			m.gesture(id, dom.PointerCancel)
			return
		}
		m.gesture(id, dom.PointerUp)
		m.gesture(id, dom.Click)
	}
}

func (m *tuiModel) gesture(id string, t dom.EventType) {
	m.trigger(id, func(id string) error { return m.app.bridge.Trigger(id, t) })
}

func (m *tuiModel) trigger(id string, fn func(string) error) {
	if err := fn(id); err != nil {
		m.log.add(errorStyle.Render(err.Error()))
	}
}

type button struct {
	id     string
	x0, x1 int
	view   string
}

// layout places the buttons of every control still in the document.
func (m *tuiModel) layout() []button {
	var out []button
	x := 0
	for _, st := range m.app.bridge.Controls() {
		if st.State == bridge.StateRemoved {
			continue
		}
		text := fmt.Sprintf("%s · %s", m.app.cfg.Label(st.ID), st.Code)

		style := buttonStyle
		switch {
		case st.State == bridge.StateInert:
			style = inertStyle
		case st.ID == m.pressed:
			style = pressedStyle
		}
		view := style.Render(text)
		w := lipgloss.Width(view)
		out = append(out, button{id: st.ID, x0: x, x1: x + w, view: view})
		x += w + 1
	}
	return out
}

func (m *tuiModel) hit(x, y int) string {
	if y < buttonRow || y >= buttonRow+buttonHeight {
		return ""
	}
	for _, b := range m.layout() {
		if x >= b.x0 && x < b.x1 {
			return b.id
		}
	}
	return ""
}

func (m *tuiModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("keybridge"))
	b.WriteString(" ")
	b.WriteString(m.app.cfg.Module.Path)
	b.WriteString(" ")
	switch {
	case !m.loaded:
		b.WriteString(helpStyle.Render("loading..."))
	case m.loadErr != nil:
		b.WriteString(errorStyle.Render("load failed: " + m.loadErr.Error()))
	default:
		b.WriteString(keyDownStyle.Render("loaded"))
	}
	b.WriteString("\n\n")

	var views []string
	for i, btn := range m.layout() {
		if i > 0 {
			views = append(views, " ")
		}
		views = append(views, btn.view)
	}
	if len(views) == 0 {
		b.WriteString(strings.Repeat("\n", buttonHeight-1))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, views...))
	b.WriteString("\n\n")

	focus := "surface unfocused"
	if m.app.doc.ActiveElement() == m.app.cfg.Surface.ID {
		focus = "surface focused"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s keys (%s)", m.app.cfg.Surface.ID, focus)))
	b.WriteString("\n")
	for _, line := range m.log.snapshot() {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.help.View(keys))

	return b.String()
}

func runTUI(ctx context.Context, a *app, log *eventLog) error {
	p := tea.NewProgram(newTUIModel(ctx, a, log),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err := p.Run()
	return err
}
