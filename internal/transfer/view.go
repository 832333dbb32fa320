package transfer

import "imesync/internal/ime"

// Mode is an editor mode name.
type Mode string

// Editor modes. Editors may define others; only ModeInsert inserts text.
const (
	ModeNormal Mode = "normal"
	ModeInsert Mode = "insert"
	ModeSelect Mode = "select"
)

// Inserting reports whether typed keys insert text in m.
func (m Mode) Inserting() bool {
	return m == ModeInsert
}

// View is the editor's live view state as seen by the controller.
type View interface {
	Mode() Mode
	IMEStatus() ime.Status
	SetIMEStatus(status ime.Status)
}

// ViewState is a View owned by the editor root for the process lifetime.
type ViewState struct {
	mode      Mode
	imeStatus ime.Status
}

// NewViewState returns a view in the given mode with nothing stashed.
func NewViewState(mode Mode) *ViewState {
	return &ViewState{mode: mode}
}

func (v *ViewState) Mode() Mode {
	return v.mode
}

// SetMode switches the mode and returns the previous one.
func (v *ViewState) SetMode(mode Mode) Mode {
	prev := v.mode
	v.mode = mode
	return prev
}

func (v *ViewState) IMEStatus() ime.Status {
	return v.imeStatus
}

func (v *ViewState) SetIMEStatus(status ime.Status) {
	v.imeStatus = status
}

var _ View = (*ViewState)(nil)
