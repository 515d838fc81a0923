// Package placement implements the pick-up/preview/anchor protocol for
// placeable items: the per-item lifecycle state machine, the ephemeral
// preview proxy with its collision watcher, candidate validation, and
// the per-tick session that orchestrates them.
package placement

// State is the lifecycle state of one placeable item.
type State int

const (
	// StateFree: the item sits loose in the scene under physics.
	StateFree State = iota
	// StateHeld: the item is grabbed and follows the controller.
	StateHeld
	// StatePreviewing: the item is held and a preview proxy is being
	// evaluated against the grid.
	StatePreviewing
	// StateAnchored: the item is committed to the grid; its transform is
	// locked and physics simulation is off.
	StateAnchored
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateFree:
		return "free"
	case StateHeld:
		return "held"
	case StatePreviewing:
		return "previewing"
	case StateAnchored:
		return "anchored"
	default:
		return "unknown"
	}
}

// Reason explains why a placement candidate was refused.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonOutOfBounds Reason = "bounds"
	ReasonOccupied    Reason = "occupied"
	ReasonCollision   Reason = "collision"
	ReasonNoHit       Reason = "no-raycast-hit"
	ReasonVetoed      Reason = "script-veto"
)

// Verdict is the outcome of validating one placement candidate.
type Verdict struct {
	OK     bool
	Reason Reason
}

// FailurePolicy selects what happens to an item when a commit fails.
type FailurePolicy int

const (
	// PolicyDrop leaves the item at its current transform and lets
	// physics take over.
	PolicyDrop FailurePolicy = iota
	// PolicyRestore returns the item to the transform it had when it was
	// grabbed.
	PolicyRestore
)

// ParseFailurePolicy maps the configuration strings "drop" and "restore"
// to their policies.
func ParseFailurePolicy(s string) (FailurePolicy, bool) {
	switch s {
	case "drop":
		return PolicyDrop, true
	case "restore":
		return PolicyRestore, true
	default:
		return PolicyDrop, false
	}
}
