package util

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
)

// CmdSpec describes a subprocess to run.
type CmdSpec struct {
	Path string   // Binary path
	Args []string // Arguments
	Env  []string // Extra environment variables (KEY=VALUE), appended to os.Environ.
	Dir  string   // Working directory; empty = inherit.

	StdoutLine func(string) // Called for each stdout line (if non-nil)
	StderrLine func(string) // Called for each stderr line (if non-nil)

	// TailLines bounds how many trailing stderr lines are kept in CmdResult.
	// Zero keeps 20.
	TailLines int
}

// CmdResult contains the tail of stderr and the exit status.
type CmdResult struct {
	StderrTail []string
	Code       int
}

// CmdRunner runs subprocesses. The default implementation shells out; tests
// substitute a fake.
type CmdRunner interface {
	Run(ctx context.Context, spec CmdSpec) (CmdResult, error)
}

type defaultRunner struct{}

// NewDefaultRunner returns the exec-backed CmdRunner.
func NewDefaultRunner() CmdRunner {
	return defaultRunner{}
}

func (defaultRunner) Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	return Run(ctx, spec)
}

// Run executes the command, streaming each output line to the callbacks.
// Output is never copied to this process's stdout, which belongs to the bar.
// On non-zero exit it returns an error carrying the exit code.
func Run(ctx context.Context, spec CmdSpec) (CmdResult, error) {
	cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
	if spec.Dir != "" {
		cmd.Dir = spec.Dir
	}
	if spec.Env != nil {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return CmdResult{Code: -1}, err
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return CmdResult{Code: -1}, err
	}

	if err := cmd.Start(); err != nil {
		return CmdResult{Code: -1}, fmt.Errorf("start %s: %w", ShellQuote(spec.Path, spec.Args), err)
	}

	tailMax := spec.TailLines
	if tailMax <= 0 {
		tailMax = 20
	}
	tail := newTail(tailMax)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdoutPipe, spec.StdoutLine)
	}()
	go func() {
		defer wg.Done()
		scanLines(stderrPipe, func(line string) {
			tail.add(line)
			if spec.StderrLine != nil {
				spec.StderrLine(line)
			}
		})
	}()

	// Readers must drain before Wait closes the pipes.
	wg.Wait()
	waitErr := cmd.Wait()

	code := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			code = exitErr.ExitCode()
		} else {
			code = -1
		}
	}

	res := CmdResult{StderrTail: tail.lines(), Code: code}
	if waitErr != nil {
		return res, &ExitCodeError{Code: code, Err: waitErr}
	}
	return res, nil
}

// ExitCodeError reports a command that ran but failed.
type ExitCodeError struct {
	Code int
	Err  error
}

func (e *ExitCodeError) Error() string {
	return fmt.Sprintf("command failed (exit %d): %v", e.Code, e.Err)
}

func (e *ExitCodeError) Unwrap() error {
	return e.Err
}

func scanLines(r io.Reader, fn func(string)) {
	sc := bufio.NewScanner(r)
	// Tools that redraw their own progress can emit very long lines.
	const maxCapacity = 1024 * 1024
	sc.Buffer(make([]byte, 0, 64*1024), maxCapacity)
	for sc.Scan() {
		if fn != nil {
			fn(sc.Text())
		}
	}
	// On a scan error keep draining so the child does not block on a full pipe.
	if sc.Err() != nil {
		_, _ = io.Copy(io.Discard, r)
	}
}

type tailBuffer struct {
	mu  sync.Mutex
	max int
	buf []string
}

func newTail(n int) *tailBuffer {
	return &tailBuffer{max: n}
}

func (t *tailBuffer) add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.buf) == t.max {
		t.buf = t.buf[1:]
	}
	t.buf = append(t.buf, line)
}

func (t *tailBuffer) lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}

// ShellQuote returns a printable shell-like command string for logging.
func ShellQuote(path string, args []string) string {
	b := &strings.Builder{}
	b.WriteString(quote(path))
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(quote(a))
	}
	return b.String()
}

func quote(s string) string {
	if s == "" {
		return "''"
	}
	// Simple quoting: wrap in single quotes and escape existing single quotes.
	if strings.ContainsAny(s, " \t\n\"'\\$`(){}[]*&;|<>?!") {
		return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
	}
	return s
}
