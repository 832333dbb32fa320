// Package ime suspends and restores the operating system's Input Method
// Editor on behalf of a modal editor.
//
// # Platform Support
//
// One adapter is compiled in per build target:
//
//	┌──────────┬──────────────────────────────┬──────────────────────────────┐
//	│ Platform │ Native subsystem             │ Suppress / restore           │
//	├──────────┼──────────────────────────────┼──────────────────────────────┤
//	│ Linux    │ IBus or Fcitx5 over D-Bus    │ FocusOut, clear IM / FocusIn │
//	│ macOS    │ Text Input Sources Services  │ select fallback / previous   │
//	│ Windows  │ IMM default IME window       │ IMC_SETOPENSTATUS 0 / 1      │
//	└──────────┴──────────────────────────────┴──────────────────────────────┘
//
// Any other target fails at construction with ErrUnsupportedPlatform.
//
// # State Model
//
// Adapters do not remember whether the IME was active. The caller keeps the
// Status returned by DisableAndGetStatus and hands it back to
// EnableWithStatus:
//
//	normal mode  → DisableAndGetStatus() → caller stashes StatusOf(result)
//	insert mode  → EnableWithStatus(stash) → caller clears stash
//
// An adapter only tracks whether it suppressed anything since the last
// restore, so an enable without a matching disable never touches the OS.
// The macOS adapter additionally keeps the identifier of the replaced input
// source, which lets it restore the exact source rather than a generic one.
//
// All calls are synchronous and must be made from the goroutine that owns
// the editor state.
package ime
