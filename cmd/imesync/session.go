package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"imesync/internal/event"
	"imesync/internal/ime"
	"imesync/internal/transfer"
)

// session feeds editor notifications read as text lines to a transfer
// controller. Each line is a mode name, "selection", "status" or "quit".
type session struct {
	view       *transfer.ViewState
	hooks      *event.Registry[transfer.View]
	controller *transfer.Controller
	manager    ime.Manager
	out        io.Writer
	logger     *slog.Logger
}

func newSession(manager ime.Manager, out io.Writer, logger *slog.Logger) *session {
	s := &session{
		view:       transfer.NewViewState(transfer.ModeNormal),
		hooks:      event.NewRegistry[transfer.View](),
		controller: transfer.NewController(manager, logger),
		manager:    manager,
		out:        out,
		logger:     logger,
	}
	s.controller.RegisterHooks(s.hooks)
	return s
}

// run processes lines from r until EOF, "quit" or ctx is done. The IME is
// left as the user had it before the first suppression.
func (s *session) run(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errc <- scanner.Err()
	}()

	defer s.restore()

	// Sync once so the starting mode is honored before the first event.
	s.controller.Sync(s.view)

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errc:
			return err
		case line := <-lines:
			if !s.handle(strings.TrimSpace(line)) {
				return nil
			}
		}
	}
}

// handle applies one command and reports whether to continue.
func (s *session) handle(line string) bool {
	switch line {
	case "":
	case "quit", "exit":
		return false
	case "status":
		stats := s.controller.Stats()
		fmt.Fprintf(s.out, "mode=%s stash=%s backend=%s disables=%d restores=%d\n",
			s.view.Mode(), s.view.IMEStatus(), s.manager.Backend(), stats.Disables, stats.Restores)
	case "selection":
		s.hooks.Dispatch(s.view, event.Event{Kind: event.SelectionDidChange})
	default:
		to := transfer.Mode(line)
		from := s.view.SetMode(to)
		if from == to {
			return true
		}
		s.hooks.Dispatch(s.view, event.Event{
			Kind: event.ModeSwitch,
			From: string(from),
			To:   string(to),
		})
		s.logger.Debug("mode switched", "from", from, "to", to)
	}
	return true
}

// restore hands a pending stash back so exiting in a non-inserting mode
// does not leave the IME suppressed.
func (s *session) restore() {
	if s.view.Mode().Inserting() {
		return
	}
	s.view.SetMode(transfer.ModeInsert)
	s.controller.Sync(s.view)
}
