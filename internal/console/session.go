package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/olympiad-applications/internal/models"
	"github.com/noah-isme/olympiad-applications/internal/service"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

// ErrQuit is returned by Execute when the user asks to leave.
var ErrQuit = errors.New("quit")

// Session drives an ApplicationBoard from line-oriented commands.
type Session struct {
	board    *service.ApplicationBoard
	renderer *Renderer
	logger   *zap.Logger
}

// NewSession constructs a console session.
func NewSession(board *service.ApplicationBoard, renderer *Renderer, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{board: board, renderer: renderer, logger: logger}
}

// Start performs the one-time load, showing the loading indicator while it
// is outstanding, and renders the first table.
func (s *Session) Start(ctx context.Context) service.LoadResult {
	if s.board.Loading() {
		s.renderer.Loading()
	}
	result := s.board.Load(ctx)
	s.Render()
	return result
}

// Render prints the current visible subset.
func (s *Session) Render() {
	view := View{
		Visible: s.board.Visible(),
		Summary: s.board.Summary(),
		Filter:  s.board.Filter(),
	}
	if id, ok := s.board.Expanded(); ok {
		if app, found := s.board.Find(id); found {
			view.Expanded = &app
		}
	}
	s.renderer.Board(view)
}

// Run starts the session and processes commands from in until EOF or quit.
func (s *Session) Run(ctx context.Context, in io.Reader) error {
	s.Start(ctx)

	done := make(chan struct{})
	defer close(done)
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			err := s.Execute(ctx, line)
			if errors.Is(err, ErrQuit) {
				return nil
			}
			if err != nil {
				s.renderer.Warning("%s", appErrors.FromError(err).Message)
			}
		}
	}
}

// Execute applies a single command line and re-renders the table.
func (s *Session) Execute(ctx context.Context, line string) error {
	name, rest := splitCommand(line)
	if name != "" {
		s.logger.Debug("console command", zap.String("command", name))
	}
	switch name {
	case "":
		return nil
	case "quit", "exit":
		return ErrQuit
	case "help":
		s.renderer.Help()
		return nil
	case "list":
	case "search":
		s.board.SetSearch(rest)
	case "status":
		if err := s.board.SetStatusFilter(rest); err != nil {
			return err
		}
	case "expand":
		id, _, err := parseID(rest)
		if err != nil {
			return err
		}
		s.board.ToggleExpanded(id)
	case "set-status":
		id, value, err := parseID(rest)
		if err != nil {
			return err
		}
		status := models.ApplicationStatus(strings.TrimSpace(value))
		s.report(s.board.UpdateStatus(ctx, id, status))
	case "notes":
		id, text, err := parseID(rest)
		if err != nil {
			return err
		}
		s.report(s.board.UpdateNotes(ctx, id, text))
	default:
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown command %q, type help", name))
	}
	s.Render()
	return nil
}

func (s *Session) report(result service.MutationResult) {
	switch {
	case result.OK():
		return
	case !result.Applied && result.Err != nil && appErrors.FromError(result.Err).Code == appErrors.ErrInvalidStatus.Code:
		s.renderer.Warning("%s", appErrors.FromError(result.Err).Message)
	case !result.Applied:
		s.renderer.Warning("application %d is not loaded", result.ID)
	default:
		s.renderer.Warning("application %d changed locally but was not saved", result.ID)
	}
}

// splitCommand separates the command word from the remainder. Everything
// after the single separating space is kept verbatim, so search terms and
// notes share one rule: leading, trailing and inner spaces survive.
func splitCommand(line string) (string, string) {
	line = strings.TrimLeft(line, " \t")
	name, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(strings.TrimSpace(name)), strings.TrimRight(rest, "\r\n")
}

// parseID reads the leading id; the text after its single separating space
// is returned verbatim.
func parseID(args string) (int64, string, error) {
	raw, rest, _ := strings.Cut(strings.TrimLeft(args, " "), " ")
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid application id %q", raw))
	}
	return id, rest, nil
}
