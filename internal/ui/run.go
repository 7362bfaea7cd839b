package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"fauxbar/internal/progress"
)

// Program wraps the bubbletea program running a Model.
type Program struct {
	p *tea.Program
}

// NewProgram prepares the TUI. Output goes to out (normally os.Stdout).
func NewProgram(ctx context.Context, m Model, out io.Writer) *Program {
	return &Program{p: tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(out))}
}

// Finish delivers the operation result. It is safe to call after Run has
// returned; the message is then dropped.
func (p *Program) Finish(r progress.Result) {
	p.p.Send(opDoneMsg{R: r})
}

// Run blocks until the user quits or the finish hold elapses.
func (p *Program) Run() (Model, error) {
	final, err := p.p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Model{}, fmt.Errorf("run tui: %w", err)
	}
	fm, ok := final.(Model)
	if !ok {
		return Model{}, fmt.Errorf("run tui: unexpected final model %T", final)
	}
	return fm, nil
}
