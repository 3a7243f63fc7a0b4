package version

// State is the lifecycle state of an object's head version
type State string

const (
	StateClosed       State = "closed"
	StateOpen         State = "open"
	StateAccessioning State = "accessioning"
)

// DeriveState maps the derived predicates onto a lifecycle state
func DeriveState(activeVersionWorkflow, accessioning bool) State {
	switch {
	case activeVersionWorkflow:
		return StateOpen
	case accessioning:
		return StateAccessioning
	default:
		return StateClosed
	}
}

// Status is a read-only summary of an object's version lifecycle
type Status struct {
	ObjectID              string
	Version               int
	State                 State
	Description           string
	Significance          string
	Accessioned           bool
	Accessioning          bool
	Assembling            bool
	ActiveVersionWorkflow bool
	Openable              bool
	Closeable             bool
	PreservationVersion   int // 0 when preservation has not seen the object or is unavailable
}
