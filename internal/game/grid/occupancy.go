package grid

import "fmt"

// Tracker is the authoritative record of which item owns which cell.
// The cell set owned by an item always equals exactly its footprint
// projected from the origin it was claimed at; Claim writes the whole
// rectangle and Release removes the whole rectangle, so partial
// ownership cannot be observed.
//
// Tracker is not safe for concurrent use; it belongs to the single
// active placement session.
type Tracker struct {
	width  int
	height int

	cells map[Coord]ItemID
	owned map[ItemID][]Coord
}

// NewTracker creates an empty tracker for a width x height grid.
//
// Precondition: width >= 1, height >= 1.
func NewTracker(width, height int) *Tracker {
	return &Tracker{
		width:  width,
		height: height,
		cells:  make(map[Coord]ItemID),
		owned:  make(map[ItemID][]Coord),
	}
}

func (t *Tracker) inBounds(c Coord) bool {
	return c.X >= 0 && c.X < t.width && c.Z >= 0 && c.Z < t.height
}

// CanPlace reports whether every cell of the footprint at origin is
// in-bounds and unclaimed, or claimed by self. Self-ownership is allowed
// so an anchored item can re-validate its own position during
// re-placement.
func (t *Tracker) CanPlace(origin Coord, fp Footprint, self ItemID) bool {
	for _, c := range fp.Cells(origin) {
		if !t.inBounds(c) {
			return false
		}
		owner, taken := t.cells[c]
		if taken && owner != self {
			return false
		}
	}
	return true
}

// Claim writes ownership of every cell of the footprint at origin to id.
// The caller must have verified CanPlace first; a cell already owned by
// another item aborts the claim without modifying any state.
//
// Postcondition: on success, CellsOwnedBy(id) covers exactly the
// footprint rectangle.
func (t *Tracker) Claim(id ItemID, origin Coord, fp Footprint) error {
	if id == "" {
		return fmt.Errorf("grid: Claim requires a non-empty item ID")
	}
	cells := fp.Cells(origin)
	for _, c := range cells {
		if !t.inBounds(c) {
			return fmt.Errorf("grid: cell %s is out of bounds", c)
		}
		if owner, taken := t.cells[c]; taken && owner != id {
			return fmt.Errorf("grid: cell %s already owned by %s", c, owner)
		}
	}

	// Re-placement: drop any previous claim so ownership never goes
	// partial or stale.
	t.Release(id)

	for _, c := range cells {
		t.cells[c] = id
	}
	t.owned[id] = cells
	return nil
}

// Release removes every cell owned by id and returns how many cells were
// released. Calling it when the item owns nothing is a safe no-op.
func (t *Tracker) Release(id ItemID) int {
	cells, ok := t.owned[id]
	if !ok {
		return 0
	}
	for _, c := range cells {
		delete(t.cells, c)
	}
	delete(t.owned, id)
	return len(cells)
}

// OwnerOf returns the item owning the cell, if any.
func (t *Tracker) OwnerOf(c Coord) (ItemID, bool) {
	id, ok := t.cells[c]
	return id, ok
}

// CellsOwnedBy returns a snapshot of the cells owned by id, in claim
// order. The returned slice is a copy.
func (t *Tracker) CellsOwnedBy(id ItemID) []Coord {
	cells, ok := t.owned[id]
	if !ok {
		return nil
	}
	out := make([]Coord, len(cells))
	copy(out, cells)
	return out
}

// OccupiedCount returns the total number of claimed cells.
func (t *Tracker) OccupiedCount() int {
	return len(t.cells)
}
