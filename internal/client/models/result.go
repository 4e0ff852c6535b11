package models

// Outcome tags how a mutation ended.
type Outcome int

const (
	// Failed means the change was not applied anywhere.
	Failed Outcome = iota
	// Confirmed means the remote service persisted the change.
	Confirmed
	// AppliedLocally means only the local mirror reflects the change; it is
	// pending sync.
	AppliedLocally
)

func (o Outcome) String() string {
	switch o {
	case Confirmed:
		return "confirmed"
	case AppliedLocally:
		return "applied_locally"
	default:
		return "failed"
	}
}

// MessageLevel is the user-facing severity of a result message.
type MessageLevel string

const (
	LevelSuccess MessageLevel = "success"
	LevelError   MessageLevel = "error"
)

// MutationResult reports the outcome of a create/update/delete call.
type MutationResult[T any] struct {
	Outcome Outcome
	Item    T
	Message string
	Err     error
}

// Level is success for confirmed and locally applied changes.
func (r MutationResult[T]) Level() MessageLevel {
	if r.Outcome == Failed {
		return LevelError
	}
	return LevelSuccess
}

// Pending reports whether the change still has to be synced.
func (r MutationResult[T]) Pending() bool {
	return r.Outcome == AppliedLocally
}

// Listed is a collection item together with its local sync flag.
type Listed[T any] struct {
	Item    T
	Pending bool
}
