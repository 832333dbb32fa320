package ime

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/godbus/dbus/v5"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeContext is an input context that tracks activation and records calls.
type fakeContext struct {
	iface        string
	active       bool
	failIsActive bool
	failAll      bool
	calls        []string
	args         [][]interface{}
}

func (c *fakeContext) Call(method string, flags dbus.Flags, args ...interface{}) *dbus.Call {
	name := strings.TrimPrefix(method, c.iface+".")
	c.calls = append(c.calls, name)
	c.args = append(c.args, args)

	if c.failAll {
		return &dbus.Call{Err: errors.New("org.freedesktop.DBus.Error.NoReply")}
	}

	switch name {
	case "IsActive":
		if c.failIsActive {
			return &dbus.Call{Err: errors.New("org.freedesktop.DBus.Error.UnknownMethod")}
		}
		return &dbus.Call{Body: []interface{}{c.active}}
	case "FocusOut":
		c.active = false
	case "FocusIn":
		c.active = true
	case "SetInputMethod":
		if len(args) > 0 && args[0] == "" {
			c.active = false
		}
	}
	return &dbus.Call{}
}

// mutations counts calls that change input context state.
func (c *fakeContext) mutations() int {
	n := 0
	for _, name := range c.calls {
		if name != "IsActive" {
			n++
		}
	}
	return n
}

// fakeBus is a session bus with a fixed set of name owners.
type fakeBus struct {
	owners   map[string]bool
	contexts map[string]*fakeContext
	probed   []string
	closed   bool
}

func newFakeBus(services ...string) *fakeBus {
	b := &fakeBus{
		owners: make(map[string]bool),
		contexts: map[string]*fakeContext{
			IBusService:   {iface: IBusInputContext},
			Fcitx5Service: {iface: Fcitx5InputContext},
		},
	}
	for _, s := range services {
		b.owners[s] = true
	}
	return b
}

func (b *fakeBus) NameHasOwner(name string) bool {
	b.probed = append(b.probed, name)
	return b.owners[name]
}

func (b *fakeBus) Object(dest string, path dbus.ObjectPath) busObject {
	return b.contexts[dest]
}

func (b *fakeBus) Close() error {
	b.closed = true
	return nil
}

// fakeRegistry is an input source registry holding one current source.
type fakeRegistry struct {
	current    InputSource
	unreadable bool
	failSelect bool
	selects    []string
}

func (r *fakeRegistry) Current() (InputSource, bool) {
	if r.unreadable {
		return InputSource{}, false
	}
	return r.current, true
}

func (r *fakeRegistry) Select(id string) bool {
	r.selects = append(r.selects, id)
	if r.failSelect {
		return false
	}
	r.current = InputSource{ID: id, Selectable: true}
	return true
}

// fakeIMEWindow models one foreground window with an optional IME window.
type fakeIMEWindow struct {
	foreground uintptr
	imeWindow  uintptr
	open       bool
	queries    int
	sets       []uintptr
}

func (w *fakeIMEWindow) ForegroundWindow() uintptr {
	return w.foreground
}

func (w *fakeIMEWindow) DefaultIMEWindow(hwnd uintptr) uintptr {
	if hwnd != w.foreground {
		return 0
	}
	return w.imeWindow
}

func (w *fakeIMEWindow) SendMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	if hwnd != w.imeWindow || msg != wmIMEControl {
		return 0
	}
	switch wparam {
	case imcGetOpenStatus:
		w.queries++
		if w.open {
			return 1
		}
		return 0
	case imcSetOpenStatus:
		w.sets = append(w.sets, lparam)
		w.open = lparam != 0
	}
	return 0
}
