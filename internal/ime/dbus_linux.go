//go:build linux

package ime

import (
	"log/slog"

	"github.com/godbus/dbus/v5"
)

// connBus adapts a session bus connection to sessionBus.
type connBus struct {
	conn *dbus.Conn
}

func (b *connBus) NameHasOwner(name string) bool {
	var has bool
	if err := b.conn.BusObject().Call(dbusNameHasOwner, 0, name).Store(&has); err != nil {
		return false
	}
	return has
}

func (b *connBus) Object(dest string, path dbus.ObjectPath) busObject {
	return b.conn.Object(dest, path)
}

func (b *connBus) Close() error {
	return b.conn.Close()
}

// newPlatformManager connects to the session bus and probes IBus, then
// Fcitx5. Without a bus the adapter stays in the unavailable variant.
func newPlatformManager(cfg Config, logger *slog.Logger) (Manager, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		logger.Debug("session bus unavailable", "error", err)
		return newDBusManager(nil, cfg, logger), nil
	}
	return newDBusManager(&connBus{conn: conn}, cfg, logger), nil
}
