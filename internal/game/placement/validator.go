package placement

import "github.com/erin-fowler/buildmode/internal/game/grid"

// Validator decides whether a placement candidate is acceptable. It is a
// pure decision function over the grid's bounds, the occupancy tracker,
// and the live collision watcher. Checks run cheapest-first and
// short-circuit: bounds, then occupancy, then collision.
type Validator struct {
	model *grid.Model
}

// NewValidator creates a validator for the given grid.
//
// Precondition: model is non-nil.
func NewValidator(model *grid.Model) *Validator {
	return &Validator{model: model}
}

// Check validates a footprint at origin for the given item against the
// watcher's current overlap set. A nil watcher counts as no collisions,
// which is the post-teardown contract of the preview proxy.
func (v *Validator) Check(origin grid.Coord, fp grid.Footprint, self grid.ItemID, watcher *CollisionWatcher) Verdict {
	for _, c := range fp.Cells(origin) {
		if !v.model.IsInBounds(c) {
			return Verdict{Reason: ReasonOutOfBounds}
		}
	}
	if !v.model.CanPlace(origin, fp, self) {
		return Verdict{Reason: ReasonOccupied}
	}
	if watcher != nil && watcher.HasBlockingCollision() {
		return Verdict{Reason: ReasonCollision}
	}
	return Verdict{OK: true}
}
