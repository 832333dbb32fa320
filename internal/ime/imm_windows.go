//go:build windows

package ime

import (
	"log/slog"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")
	imm32  = windows.NewLazySystemDLL("imm32.dll")

	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSendMessageW        = user32.NewProc("SendMessageW")
	procImmGetDefaultIMEWnd = imm32.NewProc("ImmGetDefaultIMEWnd")
)

// win32IME sends IME control messages through user32 and imm32.
type win32IME struct{}

func (win32IME) ForegroundWindow() uintptr {
	if procGetForegroundWindow.Find() != nil {
		return 0
	}
	hwnd, _, _ := procGetForegroundWindow.Call()
	return hwnd
}

func (win32IME) DefaultIMEWindow(hwnd uintptr) uintptr {
	if procImmGetDefaultIMEWnd.Find() != nil {
		return 0
	}
	imeWnd, _, _ := procImmGetDefaultIMEWnd.Call(hwnd)
	return imeWnd
}

func (win32IME) SendMessage(hwnd uintptr, msg uint32, wparam, lparam uintptr) uintptr {
	if procSendMessageW.Find() != nil {
		return 0
	}
	ret, _, _ := procSendMessageW.Call(hwnd, uintptr(msg), wparam, lparam)
	return ret
}

func newPlatformManager(cfg Config, logger *slog.Logger) (Manager, error) {
	return newIMMManager(win32IME{}, logger), nil
}
