package ui

import (
	"context"
	"time"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"fauxbar/internal/config"
	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
)

// finishHold keeps the final frame on screen so the snap to 100% is visible.
const finishHold = 600 * time.Millisecond

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	ctl     *engine.Controller
	mailbox *Mailbox
	flags   engine.Flags

	title    string
	snap     engine.Snapshot
	started  time.Time
	now      time.Time
	result   *progress.Result
	quitting bool

	// UI
	bar      bubblesprogress.Model
	animate  bool
	barWidth int
	spinner  spinner.Model
	styles   Styles
}

// NewModel builds the TUI model. The engine behind ctl must report to mailbox.
func NewModel(ctx context.Context, title string, s config.Settings, ctl *engine.Controller, mailbox *Mailbox, initial engine.Snapshot) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sty.Spinner

	bar, animate := newBar(s.Bar, s.Animation)
	now := time.Now()

	return Model{
		ctx:      c,
		cancel:   cancel,
		ctl:      ctl,
		mailbox:  mailbox,
		flags:    ctl.Flags(),
		title:    title,
		snap:     initial,
		started:  now,
		now:      now,
		bar:      bar,
		animate:  animate,
		barWidth: s.Bar.Width,
		spinner:  sp,
		styles:   sty,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenCmd(), clockCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		w := msg.Width - 12
		if w > m.barWidth {
			w = m.barWidth
		}
		if w < 10 {
			w = 10
		}
		m.bar.Width = w
		return m, nil

	case snapshotMsg:
		m.snap = msg.S
		cmds := []tea.Cmd{m.listenCmd()}
		if m.animate {
			cmds = append(cmds, m.bar.SetPercent(m.snap.Fraction()))
		}
		return m, tea.Batch(cmds...)

	case bubblesprogress.FrameMsg:
		pm, cmd := m.bar.Update(msg)
		if bm, ok := pm.(bubblesprogress.Model); ok {
			m.bar = bm
		}
		return m, cmd

	case clockMsg:
		m.now = time.Time(msg)
		if m.result != nil {
			return m, nil
		}
		return m, clockCmd()

	case opDoneMsg:
		r := msg.R
		m.result = &r
		m.now = m.started.Add(r.Elapsed)
		if r.Err == nil {
			m.flags.Completed = true
		} else {
			// Freeze the bar where it is; a failed operation never completes.
			m.flags.Active = false
		}
		m.ctl.Apply(m.flags)
		return m, tea.Tick(finishHold, func(time.Time) tea.Msg { return quitMsg{} })

	case quitMsg:
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}
	if m.result != nil {
		return m, nil
	}

	switch msg.String() {
	case " ", "p":
		m.flags.Active = !m.flags.Active
		m.ctl.Apply(m.flags)
	case "c":
		m.flags.Completed = true
		m.ctl.Apply(m.flags)
	case "r":
		// Pulse the reset edge and re-arm completion.
		m.flags.Completed = false
		m.flags.Reset = true
		m.ctl.Apply(m.flags)
		m.flags.Reset = false
		m.ctl.Apply(m.flags)
	}
	return m, nil
}

func (m Model) listenCmd() tea.Cmd {
	return func() tea.Msg {
		s, ok := m.mailbox.Next(m.ctx)
		if !ok {
			return nil
		}
		return snapshotMsg{S: s}
	}
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return clockMsg(t) })
}

// Interrupted reports whether the user quit before the operation finished.
func (m Model) Interrupted() bool {
	return m.quitting && m.result == nil
}

// Result returns the operation result once it has been delivered.
func (m Model) Result() *progress.Result {
	return m.result
}
