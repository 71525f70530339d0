package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sifan077/snipr/internal/app/model"
	"github.com/sifan077/snipr/internal/app/workflow"
	"go.uber.org/zap"
)

// LineReader yields one command line at a time. *term.Terminal satisfies it.
type LineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	scanner *bufio.Scanner
}

// NewLineReader reads newline-terminated commands from r.
func NewLineReader(r io.Reader) LineReader {
	return &scannerReader{scanner: bufio.NewScanner(r)}
}

func (s *scannerReader) ReadLine() (string, error) {
	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}
	if err := s.scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// Deps groups the collaborators of a Session.
type Deps struct {
	Controller    *workflow.Controller
	Distributor   *workflow.Distributor
	Input         LineReader
	Output        io.Writer
	Logger        *zap.Logger
	Clock         func() time.Time
	ViewportWidth int
}

// Session is the interactive front end: it reads one command, runs it to
// completion, prints the outcome and only then reads the next.
type Session struct {
	ctrl     *workflow.Controller
	dist     *workflow.Distributor
	in       LineReader
	out      io.Writer
	logger   *zap.Logger
	clock    func() time.Time
	viewport int
}

func NewSession(deps Deps) *Session {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Session{
		ctrl:     deps.Controller,
		dist:     deps.Distributor,
		in:       deps.Input,
		out:      deps.Output,
		logger:   logger.Named("session"),
		clock:    clock,
		viewport: deps.ViewportWidth,
	}
}

// Run processes commands until quit, end of input or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	s.printf("snipr: shorten a link. Type \"help\" for commands.\n")

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line, err := s.in.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}

		if quit := s.Execute(ctx, line); quit {
			return nil
		}
	}
}

// Execute runs one command line and reports whether the session should end.
func (s *Session) Execute(ctx context.Context, line string) bool {
	cmd, arg := splitCommand(line)
	if cmd == "" {
		return false
	}

	switch cmd {
	case "url":
		s.setURL(arg)
	case "alias":
		s.setAlias(arg)
	case "expire":
		s.selectExpiration(arg)
	case "date":
		s.setDate(arg)
	case "status":
		s.printStatus()
	case "submit":
		s.submit(ctx)
	case "copy":
		s.copy()
	case "share":
		s.share(ctx)
	case "qr":
		s.exportQR(arg)
	case "open":
		s.open()
	case "reset":
		s.reset()
	case "help", "?":
		s.printHelp()
	case "quit", "exit":
		return true
	default:
		s.printf("unknown command %q, type \"help\"\n", cmd)
	}
	return false
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, arg, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg)
}

func (s *Session) setURL(value string) {
	if !s.editable() {
		return
	}
	s.ctrl.SetURL(value)
	if hint := workflow.URLHint(value); hint != "" {
		s.printf("%s\n", hint)
	}
}

func (s *Session) setAlias(value string) {
	if !s.editable() {
		return
	}
	state := s.ctrl.SetAlias(value)
	if state.Form.CustomAlias != value {
		s.printf("alias set to %q (only letters, digits, '-' and '_' are kept)\n", state.Form.CustomAlias)
	}
}

func (s *Session) selectExpiration(value string) {
	if !s.editable() {
		return
	}
	option, err := model.ParseExpirationOption(strings.ToLower(value))
	if err != nil {
		s.printf("choose one of: %s\n", optionList())
		return
	}
	s.ctrl.SelectExpiration(option)
	s.printf("expiration: %s\n", option.Label())
	if option.RequiresDate() {
		s.printf("pick a date with \"date YYYY-MM-DD\" (earliest %s)\n", workflow.MinExpirationDate(s.clock()))
	}
}

func (s *Session) setDate(value string) {
	if !s.editable() {
		return
	}
	state := s.ctrl.SetExpirationDate(value)
	if !state.Form.ExpirationOption.RequiresDate() {
		s.printf("a date only applies to the custom option; run \"expire custom\" first\n")
		return
	}
	earliest := workflow.MinExpirationDate(s.clock())
	if value < earliest {
		s.printf("the date must be %s or later\n", earliest)
	}
}

func (s *Session) editable() bool {
	status := s.ctrl.State().Status
	if status == model.WorkflowIdle {
		return true
	}
	if status.IsTerminal() {
		s.printf("the form is locked; run \"reset\" to create another link\n")
	} else {
		s.printf("a request is in progress\n")
	}
	return false
}

func (s *Session) submit(ctx context.Context) {
	state, err := s.ctrl.Submit(ctx)
	if err != nil {
		var vErr *workflow.ValidationError
		switch {
		case errors.As(err, &vErr):
			s.printf("cannot submit yet, check: %s\n", strings.Join(vErr.Fields, ", "))
		case errors.Is(err, workflow.ErrNotIdle):
			s.printf("a result is already shown; run \"reset\" first\n")
		case errors.Is(err, workflow.ErrSubmissionInFlight):
			s.printf("a request is in progress\n")
		default:
			s.printf("cannot submit: %v\n", err)
		}
		return
	}
	s.printOutcome(state)
}

func (s *Session) printOutcome(state model.WorkflowState) {
	switch state.Status {
	case model.WorkflowSucceeded:
		s.printf("✓ %s\n", state.Result.ShortURL)
		if state.Result.ExpirationDescription != "" {
			s.printf("  %s\n", state.Result.ExpirationDescription)
		}
		s.printf("  copy | share | qr | open | reset\n")
	case model.WorkflowFailed:
		s.printf("✗ Error: %s\n", state.Message)
		s.printf("  run \"reset\" to try again\n")
	}
}

func (s *Session) copy() {
	if err := s.dist.Copy(); err != nil {
		s.distributionFailed(err)
		return
	}
	s.printf("Copied!\n")
}

func (s *Session) share(ctx context.Context) {
	channel, err := s.dist.Share(ctx)
	if err != nil {
		s.distributionFailed(err)
		return
	}
	if channel == workflow.ChannelCopy {
		s.printf("Sharing is not available, link copied instead. Copied!\n")
		return
	}
	s.printf("Shared!\n")
}

func (s *Session) exportQR(arg string) {
	width := s.viewport
	if arg != "" {
		w, err := strconv.Atoi(arg)
		if err != nil || w <= 0 {
			s.printf("usage: qr [viewport-width]\n")
			return
		}
		width = w
	}

	path, err := s.dist.ExportQR(width)
	if err != nil {
		s.distributionFailed(err)
		return
	}
	s.printf("Downloaded! %s\n", path)
}

func (s *Session) open() {
	if err := s.dist.Open(); err != nil {
		s.distributionFailed(err)
		return
	}
	s.printf("opened in browser\n")
}

func (s *Session) distributionFailed(err error) {
	if errors.Is(err, workflow.ErrNoResult) {
		s.printf("no short link yet; fill the form and run \"submit\"\n")
		return
	}
	// Distribution failures are non-fatal; they are already logged.
	s.logger.Debug("distribution failed", zap.Error(err))
	s.printf("that did not work: %v\n", err)
}

func (s *Session) reset() {
	status := s.ctrl.State().Status
	if !status.IsTerminal() {
		s.printf("nothing to reset\n")
		return
	}
	s.ctrl.Reset()
	s.printf("ready for a new link\n")
}

func (s *Session) printStatus() {
	state := s.ctrl.State()
	form := state.Form

	s.printf("status:     %s\n", state.Status)
	s.printf("url:        %s %s\n", valueOrDash(form.SourceURL), workflow.URLHint(form.SourceURL))
	s.printf("alias:      %s\n", valueOrDash(form.CustomAlias))
	s.printf("expiration: %s\n", form.ExpirationOption.Label())
	if form.ExpirationOption.RequiresDate() {
		s.printf("date:       %s\n", valueOrDash(form.ExpirationDate))
	}

	switch state.Status {
	case model.WorkflowIdle:
		s.printf("can submit: %t\n", s.ctrl.CanSubmit())
	case model.WorkflowSucceeded, model.WorkflowFailed:
		s.printOutcome(state)
	}

	if s.dist != nil {
		if s.dist.Copied() {
			s.printf("Copied!\n")
		}
		if s.dist.Downloaded() {
			s.printf("Downloaded!\n")
		}
	}
}

func (s *Session) printHelp() {
	s.printf(`commands:
  url <link>            set the link to shorten
  alias <name>          optional custom alias (letters, digits, - and _)
  expire <option>       %s
  date <YYYY-MM-DD>     expiration date for the custom option
  status                show the form and the current result
  submit                create the short link
  copy                  copy the short link to the clipboard
  share                 share the short link (falls back to copy)
  qr [width]            save the short link as a QR code PNG
  open                  open the short link in the browser
  reset                 start over after a result
  quit                  leave
`, optionList())
}

func (s *Session) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

func optionList() string {
	opts := model.ExpirationOptions()
	names := make([]string, len(opts))
	for i, o := range opts {
		names[i] = o.String()
	}
	return strings.Join(names, ", ")
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
