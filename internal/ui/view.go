package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
	"fauxbar/internal/util/format"
)

func (m Model) View() string {
	if m.quitting && m.result == nil {
		return m.styles.Warning.Render("interrupted") + "\n"
	}
	return m.viewHeader() + "\n\n" + m.styles.Box.Render(m.viewBar()+"\n"+m.viewStatus()) + "\n" + m.viewFooter() + "\n"
}

func (m Model) viewHeader() string {
	title := m.styles.Title.Render("fauxbar")
	if m.title == "" {
		return title
	}
	return title + "  " + m.styles.Subtitle.Render(truncate(m.title, 60))
}

func (m Model) viewBar() string {
	var bar string
	if m.animate {
		bar = m.bar.View()
	} else {
		bar = m.bar.ViewAs(m.snap.Fraction())
	}
	return fmt.Sprintf("%s %s", bar, m.styles.Percent.Render(fmt.Sprintf("%6s", format.Percent(m.snap.Percent()))))
}

func (m Model) viewStatus() string {
	var left string
	switch {
	case m.result != nil && m.result.Err != nil:
		left = m.styles.Error.Render("✗ " + m.result.Err.Error())
	case m.result != nil:
		left = m.styles.Success.Render("✓ done")
	default:
		stage := progress.StageOf(m.snap)
		switch stage {
		case progress.StageRunning:
			left = m.spinner.View() + " " + string(stage)
		case progress.StageStalled:
			left = m.styles.Warning.Render("● waiting for completion")
		case progress.StageCompleted:
			left = m.styles.Success.Render("✓ " + string(stage))
		default:
			left = m.styles.Faint.Render("○ " + string(stage))
		}
	}

	parts := []string{
		left,
		m.phaseStyle().Render(m.snap.Phase.String()),
		m.styles.Faint.Render(format.Elapsed(m.now.Sub(m.started))),
	}
	return strings.Join(parts, m.styles.Faint.Render(" • "))
}

func (m Model) viewFooter() string {
	if m.result != nil {
		return ""
	}
	return m.styles.Subtitle.Render("space: pause/resume • c: complete • r: reset • q: quit")
}

func (m Model) phaseStyle() lipgloss.Style {
	switch m.snap.Phase {
	case engine.PhaseAccelerate:
		return m.styles.Boost
	case engine.PhaseSettle:
		return m.styles.Settle
	default:
		return m.styles.Ramp
	}
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
