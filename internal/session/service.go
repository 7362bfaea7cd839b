// Package session runs an operation behind a simulated progress bar.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"fauxbar/internal/config"
	"fauxbar/internal/engine"
	"fauxbar/internal/progress"
	"fauxbar/internal/ui"
	"fauxbar/internal/util"
)

// Operation is the real work the bar stands in for.
type Operation struct {
	Title string
	Exec  func(ctx context.Context) error
}

// Service wires the engine, its reporters and the chosen front end around an
// Operation.
type Service struct {
	settings  config.Settings
	logger    *zap.Logger
	reporters []progress.Reporter
	out       io.Writer
	useUI     bool
	lineOpts  []progress.LineOption
}

// Option configures a Service.
type Option func(*Service)

// WithSettings sets the engine and presentation settings.
func WithSettings(st config.Settings) Option {
	return func(s *Service) {
		s.settings = st
	}
}

// WithLogger sets the logger shared by the engine and the log reporter.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithReporter attaches an extra reporter, e.g. the metrics reporter.
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		if rp != nil {
			s.reporters = append(s.reporters, rp)
		}
	}
}

// WithOutput sets where the bar or the progress lines are written.
func WithOutput(w io.Writer) Option {
	return func(s *Service) {
		s.out = w
	}
}

// WithUI selects the interactive TUI instead of plain lines.
func WithUI(on bool) Option {
	return func(s *Service) {
		s.useUI = on
	}
}

// WithLineOptions forwards options to the plain line reporter.
func WithLineOptions(opts ...progress.LineOption) Option {
	return func(s *Service) {
		s.lineOpts = append(s.lineOpts, opts...)
	}
}

// NewService constructs a Service. Missing settings fall back to
// config.Defaults and output to stdout.
func NewService(opts ...Option) *Service {
	s := &Service{settings: config.Defaults()}
	for _, o := range opts {
		o(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.out == nil {
		s.out = os.Stdout
	}
	return s
}

// Run activates the bar, runs op and settles the bar on its outcome: success
// completes it, failure freezes it where it stands. The returned error is
// only for setup failures; the operation's own error is in Result.Err.
func (s *Service) Run(ctx context.Context, op Operation) (progress.Result, error) {
	title := op.Title
	if s.settings.Bar.Title != "" {
		title = s.settings.Bar.Title
	}

	reporters := []progress.Reporter{progress.NewLogReporter(s.logger.Named("progress"))}
	reporters = append(reporters, s.reporters...)

	var mailbox *ui.Mailbox
	if s.useUI {
		mailbox = ui.NewMailbox()
	} else {
		lineOpts := append([]progress.LineOption{progress.WithPrefix(prefixFor(title))}, s.lineOpts...)
		reporters = append(reporters, progress.NewLineReporter(s.out, lineOpts...))
	}

	engineOpts := []engine.Option{engine.WithLogger(s.logger.Named("engine"))}
	for _, rp := range reporters {
		engineOpts = append(engineOpts, engine.WithObserver(rp))
	}
	if mailbox != nil {
		engineOpts = append(engineOpts, engine.WithObserver(mailbox))
	}

	e, err := engine.New(s.settings.Engine(), engineOpts...)
	if err != nil {
		return progress.Result{}, fmt.Errorf("create engine: %w", err)
	}
	defer e.Close()
	ctl := engine.NewController(e)

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.logger.Info("operation started", zap.String("title", title), zap.Bool("tui", s.useUI))
	ctl.Apply(engine.Flags{Active: true})

	done := make(chan progress.Result, 1)
	start := func(finish func(progress.Result)) {
		go func() {
			t0 := time.Now()
			err := op.Exec(opCtx)
			r := progress.Result{
				Title:    title,
				Err:      err,
				Elapsed:  time.Since(t0),
				ExitCode: exitCode(err),
			}
			done <- r
			if finish != nil {
				finish(r)
			}
		}()
	}

	var r progress.Result
	if s.useUI {
		m := ui.NewModel(opCtx, title, s.settings, ctl, mailbox, e.Snapshot())
		p := ui.NewProgram(opCtx, m, s.out)
		start(p.Finish)
		if _, err := p.Run(); err != nil {
			cancel()
			<-done
			return progress.Result{}, err
		}
		// The user may have quit first; stop the operation and collect it.
		cancel()
		r = <-done
	} else {
		start(nil)
		r = <-done
	}

	settle(ctl, r)
	for _, rp := range reporters {
		rp.Result(r)
	}
	return r, nil
}

// settle applies the outcome through the controller so that a completion
// already requested from the TUI is not repeated.
func settle(ctl *engine.Controller, r progress.Result) {
	f := ctl.Flags()
	f.Reset = false
	if r.Err == nil {
		f.Completed = true
	} else {
		f.Active = false
	}
	ctl.Apply(f)
}

// exitCode extracts the wrapped command's exit status, or 0 when there is none.
func exitCode(err error) int {
	var ee *util.ExitCodeError
	if errors.As(err, &ee) && ee.Code > 0 {
		return ee.Code
	}
	return 0
}

func prefixFor(title string) string {
	if title == "" {
		return "fauxbar"
	}
	return title
}
