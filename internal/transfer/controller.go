// Package transfer keeps the OS IME in step with the editor mode.
//
// Leaving an inserting mode suppresses the IME and stashes whether it was
// active on the view. Entering an inserting mode hands the stash back to the
// IME manager and clears it.
package transfer

import (
	"log/slog"

	"imesync/internal/event"
	"imesync/internal/ime"
)

// Stats counts native calls made by a Controller.
type Stats struct {
	Disables uint64
	Restores uint64
}

// Controller drives an ime.Manager from editor notifications.
type Controller struct {
	manager ime.Manager
	logger  *slog.Logger
	stats   Stats
}

// NewController creates a controller for manager.
func NewController(manager ime.Manager, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		manager: manager,
		logger:  logger.With("component", "transfer"),
	}
}

// RegisterHooks subscribes Sync to mode switches and selection changes.
func (c *Controller) RegisterHooks(r *event.Registry[View]) {
	r.Register(event.ModeSwitch, c.onEvent)
	r.Register(event.SelectionDidChange, c.onEvent)
}

func (c *Controller) onEvent(v View, ev event.Event) {
	c.Sync(v)
}

// Sync brings the IME in line with the current mode of v.
//
// In a non-inserting mode the IME is suppressed on every call, so an IME the
// user switched on outside insert mode is turned off again. A stashed status
// is never downgraded: once suppressed the IME reads as inactive, and
// recording that would lose the state to restore. It is only upgraded from
// inactive to active.
//
// In an inserting mode the stash is handed back once and cleared.
func (c *Controller) Sync(v View) {
	stash := v.IMEStatus()

	if !v.Mode().Inserting() {
		status := ime.StatusOf(c.manager.DisableAndGetStatus())
		c.stats.Disables++
		if !stash.Known() || (status.Active() && !stash.Active()) {
			v.SetIMEStatus(status)
		}
		c.logger.Debug("ime suppressed", "mode", v.Mode(), "was", status, "stash", v.IMEStatus())
		return
	}

	if !stash.Known() {
		return
	}
	c.manager.EnableWithStatus(stash)
	v.SetIMEStatus(ime.StatusUnknown)
	c.stats.Restores++
	c.logger.Debug("ime restored", "mode", v.Mode(), "status", stash)
}

// Stats returns the native call counters.
func (c *Controller) Stats() Stats {
	return c.stats
}
