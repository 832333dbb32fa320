package ime

import (
	"log/slog"
	"slices"

	"github.com/godbus/dbus/v5"
)

// Service names accepted in Config.Services.
const (
	ServiceIBus   = "ibus"
	ServiceFcitx5 = "fcitx5"
)

// IBus input context.
const (
	IBusService          = "org.freedesktop.IBus"
	IBusInputContextPath = "/org/freedesktop/IBus/InputContexts"
	IBusInputContext     = "org.freedesktop.IBus.InputContext"
)

// Fcitx5 input context.
const (
	Fcitx5Service          = "org.fcitx.Fcitx5"
	Fcitx5InputContextPath = "/org/fcitx/Fcitx5/InputContext1"
	Fcitx5InputContext     = "org.fcitx.Fcitx5.InputContext1"
)

const dbusNameHasOwner = "org.freedesktop.DBus.NameHasOwner"

// imeService is the input method service selected at construction.
type imeService int

const (
	serviceNone imeService = iota
	serviceIBus
	serviceFcitx5
)

func (s imeService) String() string {
	switch s {
	case serviceIBus:
		return ServiceIBus
	case serviceFcitx5:
		return ServiceFcitx5
	default:
		return "none"
	}
}

// busObject is the subset of dbus.BusObject the adapter calls.
type busObject interface {
	Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// sessionBus is the session message bus as seen by the adapter.
type sessionBus interface {
	NameHasOwner(name string) bool
	Object(dest string, path dbus.ObjectPath) busObject
	Close() error
}

// dbusManager drives IBus or Fcitx5 input contexts over the session bus.
type dbusManager struct {
	bus     sessionBus
	service imeService
	context busObject
	iface   string

	// suppressed is set by a disable that reached the service and consumed
	// by the next enable.
	suppressed bool

	logger *slog.Logger
}

// newDBusManager probes the bus once. A nil bus yields the unavailable
// variant.
func newDBusManager(bus sessionBus, cfg Config, logger *slog.Logger) *dbusManager {
	m := &dbusManager{bus: bus, logger: logger}
	if bus == nil {
		return m
	}

	// nil allows every service; an explicitly empty list allows none.
	allowed := cfg.Services
	if allowed == nil {
		allowed = []string{ServiceIBus, ServiceFcitx5}
	}

	switch {
	case slices.Contains(allowed, ServiceIBus) && bus.NameHasOwner(IBusService):
		m.service = serviceIBus
		m.context = bus.Object(IBusService, IBusInputContextPath)
		m.iface = IBusInputContext
	case slices.Contains(allowed, ServiceFcitx5) && bus.NameHasOwner(Fcitx5Service):
		m.service = serviceFcitx5
		m.context = bus.Object(Fcitx5Service, Fcitx5InputContextPath)
		m.iface = Fcitx5InputContext
	}

	logger.Debug("input method service selected", "service", m.service.String())
	return m
}

func (m *dbusManager) Backend() string {
	return m.service.String()
}

func (m *dbusManager) DisableAndGetStatus() bool {
	if m.service == serviceNone {
		return false
	}

	var active bool
	if err := m.call("IsActive").Store(&active); err != nil {
		m.logger.Debug("query input context", "service", m.service.String(), "error", err)
		active = false
	}

	switch m.service {
	case serviceIBus:
		m.call("FocusOut")
	case serviceFcitx5:
		// An empty identifier clears the active input method.
		m.call("SetInputMethod", "", dbus.ObjectPath("/"))
	}

	m.suppressed = true
	return active
}

// EnableWithStatus on Fcitx5 re-activates the input context instead of
// re-selecting the previous input method, whose identifier is not kept.
func (m *dbusManager) EnableWithStatus(status Status) {
	if !m.suppressed {
		return
	}
	m.suppressed = false
	if !status.Active() || m.service == serviceNone {
		return
	}
	m.call("FocusIn")
}

// call invokes a method on the input context and logs failures.
func (m *dbusManager) call(method string, args ...interface{}) *dbus.Call {
	c := m.context.Call(m.iface+"."+method, 0, args...)
	if c.Err != nil {
		m.logger.Debug("input context call failed",
			"service", m.service.String(),
			"method", method,
			"error", c.Err,
		)
	}
	return c
}

// Close releases the bus connection.
func (m *dbusManager) Close() error {
	if m.bus == nil {
		return nil
	}
	return m.bus.Close()
}

var _ Manager = (*dbusManager)(nil)
