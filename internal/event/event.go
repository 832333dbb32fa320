// Package event dispatches editor notifications to registered hooks.
//
// Hooks run synchronously on the dispatching goroutine, in registration
// order. A Registry is not safe for concurrent use; it belongs to the
// editor's event loop.
package event

// Kind identifies a notification.
type Kind int

const (
	// ModeSwitch fires after the editor changed its mode.
	ModeSwitch Kind = iota + 1
	// SelectionDidChange fires after the cursor selection moved.
	SelectionDidChange
)

func (k Kind) String() string {
	switch k {
	case ModeSwitch:
		return "mode_switch"
	case SelectionDidChange:
		return "selection_did_change"
	default:
		return "unknown"
	}
}

// Event is a notification. From and To carry mode names for ModeSwitch and
// are empty otherwise.
type Event struct {
	Kind Kind
	From string
	To   string
}

// Hook handles an event for the target the editor passes to Dispatch.
type Hook[T any] func(target T, ev Event)

// Registry holds hooks per event kind. The zero value is ready to use.
type Registry[T any] struct {
	hooks map[Kind][]Hook[T]
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{hooks: make(map[Kind][]Hook[T])}
}

// Register adds a hook for kind.
func (r *Registry[T]) Register(kind Kind, h Hook[T]) {
	if r.hooks == nil {
		r.hooks = make(map[Kind][]Hook[T])
	}
	r.hooks[kind] = append(r.hooks[kind], h)
}

// Dispatch runs every hook registered for ev.Kind and returns how many ran.
func (r *Registry[T]) Dispatch(target T, ev Event) int {
	hooks := r.hooks[ev.Kind]
	for _, h := range hooks {
		h(target, ev)
	}
	return len(hooks)
}

// Len returns the number of hooks registered for kind.
func (r *Registry[T]) Len(kind Kind) int {
	return len(r.hooks[kind])
}
