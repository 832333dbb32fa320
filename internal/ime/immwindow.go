package ime

import "log/slog"

// IME window control messages.
const (
	wmIMEControl     = 0x0283
	imcGetOpenStatus = 0x0005
	imcSetOpenStatus = 0x0006
)

// imeWindowAPI is the window-message surface of the OS IME.
// A zero handle means "no window".
type imeWindowAPI interface {
	ForegroundWindow() uintptr
	DefaultIMEWindow(hwnd uintptr) uintptr
	SendMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr
}

// immManager opens and closes the IME attached to the foreground window.
// Window handles are resolved on every call.
type immManager struct {
	api imeWindowAPI

	// suppressed is set by a disable that reached an IME window.
	suppressed bool

	logger *slog.Logger
}

func newIMMManager(api imeWindowAPI, logger *slog.Logger) *immManager {
	return &immManager{api: api, logger: logger}
}

func (m *immManager) Backend() string {
	return "imm"
}

// imeWindow resolves the default IME window of the foreground window.
func (m *immManager) imeWindow() (uintptr, bool) {
	hwnd := m.api.ForegroundWindow()
	if hwnd == 0 {
		return 0, false
	}
	imeWnd := m.api.DefaultIMEWindow(hwnd)
	if imeWnd == 0 {
		m.logger.Debug("no IME window attached", "hwnd", hwnd)
		return 0, false
	}
	return imeWnd, true
}

func (m *immManager) DisableAndGetStatus() bool {
	imeWnd, ok := m.imeWindow()
	if !ok {
		return false
	}
	open := m.api.SendMessage(imeWnd, wmIMEControl, imcGetOpenStatus, 0) != 0
	m.api.SendMessage(imeWnd, wmIMEControl, imcSetOpenStatus, 0)
	m.suppressed = true
	return open
}

func (m *immManager) EnableWithStatus(status Status) {
	if !m.suppressed {
		return
	}
	m.suppressed = false
	if !status.Active() {
		return
	}
	imeWnd, ok := m.imeWindow()
	if !ok {
		return
	}
	m.api.SendMessage(imeWnd, wmIMEControl, imcSetOpenStatus, 1)
}

var _ Manager = (*immManager)(nil)
