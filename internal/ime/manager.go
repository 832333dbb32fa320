package ime

import (
	"errors"
	"log/slog"
)

// ErrUnsupportedPlatform is returned by New when the binary was built for a
// target without an IME backend. It is a build configuration mistake, not a
// runtime condition, and callers are expected to abort on it.
var ErrUnsupportedPlatform = errors.New("ime: IME support is not implemented for this platform")

// Status is the IME activation recorded before the editor suppressed it.
type Status uint8

const (
	// StatusUnknown means nothing was recorded.
	StatusUnknown Status = iota
	// StatusInactive means the IME was already off.
	StatusInactive
	// StatusActive means the IME was composing and should be restored.
	StatusActive
)

// StatusOf converts a queried activation into a Status.
func StatusOf(active bool) Status {
	if active {
		return StatusActive
	}
	return StatusInactive
}

// Active reports whether s asks for a restore.
func (s Status) Active() bool {
	return s == StatusActive
}

// Known reports whether a value was recorded.
func (s Status) Known() bool {
	return s != StatusUnknown
}

func (s Status) String() string {
	switch s {
	case StatusInactive:
		return "inactive"
	case StatusActive:
		return "active"
	default:
		return "unknown"
	}
}

// Manager controls the native IME of the current platform.
//
// Implementations never return errors: an IME toggle must not interrupt
// editing, so every native failure degrades to "was not active" or a no-op.
type Manager interface {
	// DisableAndGetStatus queries the native IME, forces it into a
	// non-composing state and returns whether it was active before the call.
	DisableAndGetStatus() bool

	// EnableWithStatus restores the IME when status is StatusActive and a
	// previous DisableAndGetStatus suppressed it. Every other call is a no-op.
	EnableWithStatus(status Status)

	// Backend names the native subsystem in use.
	Backend() string
}

// Config holds platform adapter settings.
type Config struct {
	// Disabled makes New return a NopManager without touching the OS.
	Disabled bool

	// FallbackInputSource is the non-composing layout selected on macOS.
	FallbackInputSource string

	// Services restricts which D-Bus services are probed on Linux.
	// Probe order is fixed: ibus before fcitx5.
	Services []string
}

// DefaultFallbackInputSource is the bundled U.S. keyboard layout.
const DefaultFallbackInputSource = "com.apple.keylayout.US"

// DefaultConfig returns adapter settings suitable for every platform.
func DefaultConfig() Config {
	return Config{
		FallbackInputSource: DefaultFallbackInputSource,
		Services:            []string{ServiceIBus, ServiceFcitx5},
	}
}

// New selects the IME adapter for the build target.
func New(cfg Config, logger *slog.Logger) (Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "ime")
	if cfg.Disabled {
		logger.Debug("ime synchronization disabled by configuration")
		return NopManager{}, nil
	}
	if cfg.FallbackInputSource == "" {
		cfg.FallbackInputSource = DefaultFallbackInputSource
	}
	return newPlatformManager(cfg, logger)
}

// MustNew is like New but panics on an unsupported build target.
func MustNew(cfg Config, logger *slog.Logger) Manager {
	m, err := New(cfg, logger)
	if err != nil {
		panic(err)
	}
	return m
}

// NopManager never touches the OS. It reports the IME as inactive.
type NopManager struct{}

func (NopManager) DisableAndGetStatus() bool { return false }

func (NopManager) EnableWithStatus(Status) {}

func (NopManager) Backend() string { return "none" }

var _ Manager = NopManager{}
