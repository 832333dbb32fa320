package ime

import "log/slog"

// InputSource describes a keyboard input source of the OS registry.
type InputSource struct {
	ID         string
	Selectable bool
}

// inputSourceRegistry reads and selects the current keyboard input source.
type inputSourceRegistry interface {
	// Current returns false when the source cannot be read.
	Current() (InputSource, bool)
	// Select makes the source with the given identifier current.
	Select(id string) bool
}

// inputSourceManager suppresses composition by switching to a fallback
// layout and restores the exact source that was current before.
type inputSourceManager struct {
	registry inputSourceRegistry
	fallback string

	// previous is the source replaced by the fallback, consumed by the next
	// enable.
	previous string

	logger *slog.Logger
}

func newInputSourceManager(registry inputSourceRegistry, cfg Config, logger *slog.Logger) *inputSourceManager {
	fallback := cfg.FallbackInputSource
	if fallback == "" {
		fallback = DefaultFallbackInputSource
	}
	return &inputSourceManager{
		registry: registry,
		fallback: fallback,
		logger:   logger,
	}
}

func (m *inputSourceManager) Backend() string {
	return "tis"
}

func (m *inputSourceManager) DisableAndGetStatus() bool {
	current, ok := m.registry.Current()
	if !ok {
		m.logger.Debug("current input source unreadable")
		return false
	}
	if current.ID == m.fallback {
		return false
	}
	if !current.Selectable {
		// It cannot be selected back, but composition still has to stop.
		m.selectFallback()
		return false
	}

	m.previous = current.ID
	m.selectFallback()
	return true
}

func (m *inputSourceManager) selectFallback() {
	if !m.registry.Select(m.fallback) {
		m.logger.Debug("select fallback input source failed", "source", m.fallback)
	}
}

func (m *inputSourceManager) EnableWithStatus(status Status) {
	previous := m.previous
	m.previous = ""
	if !status.Active() || previous == "" {
		return
	}
	if !m.registry.Select(previous) {
		m.logger.Debug("restore input source failed", "source", previous)
	}
}

var _ Manager = (*inputSourceManager)(nil)
