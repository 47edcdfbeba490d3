package roster

import "fmt"

// RowState tracks where a calendar row sits in the schedule editor lifecycle.
// The SPA this service replaced scattered the same information across ad hoc
// loading/dirty/saving flags; Transition is the single table the web client
// mirrors so both sides agree on which editor actions are legal when.
type RowState int

const (
	// Collapsed is the initial state: the row is closed and nothing loaded.
	Collapsed RowState = iota
	// Loading means the row was expanded and its schedule is being fetched.
	Loading
	// Loaded means the schedule is in memory and matches persistence.
	Loaded
	// Dirty means the in-memory schedule has unsaved edits.
	Dirty
	// Saving means a save is in flight.
	Saving
)

func (s RowState) String() string {
	switch s {
	case Collapsed:
		return "collapsed"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Dirty:
		return "dirty"
	case Saving:
		return "saving"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// RowEvent names the editor actions that move a row between states.
type RowEvent int

const (
	// Expand opens a collapsed row and triggers a load.
	Expand RowEvent = iota
	// Collapse closes the row, discarding nothing.
	Collapse
	// LoadDone completes a fetch.
	LoadDone
	// LoadFailed aborts a fetch back to collapsed.
	LoadFailed
	// Edit records a day toggle, time change or slot operation that passed
	// validation. All edit kinds mark the row dirty; saving is always an
	// explicit action.
	Edit
	// Save starts persisting the dirty schedule.
	Save
	// SaveDone completes persistence and re-syncs from storage.
	SaveDone
	// SaveFailed returns the row to dirty so the user can retry.
	SaveFailed
)

func (e RowEvent) String() string {
	switch e {
	case Expand:
		return "expand"
	case Collapse:
		return "collapse"
	case LoadDone:
		return "load_done"
	case LoadFailed:
		return "load_failed"
	case Edit:
		return "edit"
	case Save:
		return "save"
	case SaveDone:
		return "save_done"
	case SaveFailed:
		return "save_failed"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// ErrInvalidTransition is returned when an event is not legal in the row's
// current state.
type ErrInvalidTransition struct {
	State RowState
	Event RowEvent
}

func (e *ErrInvalidTransition) Error() string {
	return fmt.Sprintf("roster: event %s not allowed in state %s", e.Event, e.State)
}

var transitions = map[RowState]map[RowEvent]RowState{
	Collapsed: {
		Expand: Loading,
	},
	Loading: {
		LoadDone:   Loaded,
		LoadFailed: Collapsed,
		Collapse:   Collapsed,
	},
	Loaded: {
		Edit:     Dirty,
		Collapse: Collapsed,
	},
	Dirty: {
		Edit:     Dirty,
		Save:     Saving,
		Collapse: Collapsed,
	},
	Saving: {
		SaveDone:   Loaded,
		SaveFailed: Dirty,
	},
}

// Transition returns the state reached by applying event in state, or an
// *ErrInvalidTransition when the event is not legal there. The current state
// is returned unchanged on error.
func Transition(state RowState, event RowEvent) (RowState, error) {
	if next, ok := transitions[state][event]; ok {
		return next, nil
	}
	return state, &ErrInvalidTransition{State: state, Event: event}
}
