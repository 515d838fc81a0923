// Package grid implements the discretized placement surface: world/grid
// coordinate transforms, footprint snapping, and cell occupancy tracking.
//
// The grid origin convention is fixed: the model's world origin is the
// corner of cell (0,0), cells extend toward +X/+Z, and cell centers sit
// at origin + (x+0.5, z+0.5) * cellSize. World→grid→world transforms are
// only meaningful under this one convention; callers must not assume a
// centered-area origin.
package grid

import (
	"fmt"
	"math"

	"github.com/erin-fowler/buildmode/internal/game/geom"
)

// ItemID identifies a placeable item instance.
type ItemID string

// Coord identifies a single grid cell. (0,0) is the corner cell at the
// grid's world origin.
type Coord struct {
	X, Z int
}

// String returns the coordinate as "(x,z)".
func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Footprint is the rectangular cell extent of an item plus its world
// height. Width and Depth are in cells.
type Footprint struct {
	Width  int
	Depth  int
	Height float64
}

// Clamped returns a copy of f with Width and Depth raised to at least 1,
// and reports whether any clamping occurred. Non-positive footprints are
// a content defect, never a runtime failure.
func (f Footprint) Clamped() (Footprint, bool) {
	clamped := false
	if f.Width < 1 {
		f.Width = 1
		clamped = true
	}
	if f.Depth < 1 {
		f.Depth = 1
		clamped = true
	}
	return f, clamped
}

// Cells returns every coordinate covered by the footprint when its
// origin cell is at origin.
//
// Postcondition: len(result) == Width*Depth.
func (f Footprint) Cells(origin Coord) []Coord {
	cells := make([]Coord, 0, f.Width*f.Depth)
	for dz := 0; dz < f.Depth; dz++ {
		for dx := 0; dx < f.Width; dx++ {
			cells = append(cells, Coord{origin.X + dx, origin.Z + dz})
		}
	}
	return cells
}

// Model is the placement grid: a fixed-size planar lattice of square
// cells at a fixed world position, together with its occupancy tracker.
// All geometric operations are pure; occupancy mutations go through the
// embedded Tracker.
//
// A Model has a single designated writer. The hosting application must
// serialize access if multiple placement sessions share one grid.
type Model struct {
	cellSize float64
	width    int
	height   int
	origin   geom.Vec3

	tracker *Tracker
}

// NewModel creates a grid of width x height cells of the given cell size
// whose (0,0) cell corner sits at origin.
//
// Precondition: width >= 1, height >= 1, cellSize > 0.
func NewModel(width, height int, cellSize float64, origin geom.Vec3) (*Model, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid: dimensions must be >= 1, got %dx%d", width, height)
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("grid: cell size must be positive, got %g", cellSize)
	}
	return &Model{
		cellSize: cellSize,
		width:    width,
		height:   height,
		origin:   origin,
		tracker:  NewTracker(width, height),
	}, nil
}

// Width returns the grid width in cells.
func (m *Model) Width() int { return m.width }

// Height returns the grid height in cells.
func (m *Model) Height() int { return m.height }

// CellSize returns the world-space edge length of one cell.
func (m *Model) CellSize() float64 { return m.cellSize }

// PlaneY returns the world Y height of the placement surface.
func (m *Model) PlaneY() float64 { return m.origin.Y }

// Tracker returns the occupancy tracker owned by this grid.
func (m *Model) Tracker() *Tracker { return m.tracker }

// WorldToGrid maps a world position to the cell containing it, using
// floor division relative to the grid origin. Positions outside the grid
// map to out-of-bounds coordinates; use IsInBounds to test.
func (m *Model) WorldToGrid(p geom.Vec3) Coord {
	return Coord{
		X: int(math.Floor((p.X - m.origin.X) / m.cellSize)),
		Z: int(math.Floor((p.Z - m.origin.Z) / m.cellSize)),
	}
}

// GridToWorld maps a cell coordinate to the world position of its
// center, on the grid plane.
func (m *Model) GridToWorld(c Coord) geom.Vec3 {
	return geom.Vec3{
		X: m.origin.X + (float64(c.X)+0.5)*m.cellSize,
		Y: m.origin.Y,
		Z: m.origin.Z + (float64(c.Z)+0.5)*m.cellSize,
	}
}

// IsInBounds reports whether c lies within the grid.
func (m *Model) IsInBounds(c Coord) bool {
	return c.X >= 0 && c.X < m.width && c.Z >= 0 && c.Z < m.height
}

// AnchorCell returns the footprint origin cell for a placement aimed at
// hit: the cell under the hit point, shifted so the footprint rectangle
// centers on it.
func (m *Model) AnchorCell(hit geom.Vec3, fp Footprint) Coord {
	c := m.WorldToGrid(hit)
	return Coord{
		X: c.X - (fp.Width-1)/2,
		Z: c.Z - (fp.Depth-1)/2,
	}
}

// PlacementCenter returns the world-space center of a footprint whose
// origin cell is at origin. For odd extents this is a cell center; for
// even extents it is the shared corner between cells, so multi-cell
// items sit centered over the cells they occupy.
func (m *Model) PlacementCenter(origin Coord, fp Footprint) geom.Vec3 {
	return geom.Vec3{
		X: m.origin.X + (float64(origin.X)+float64(fp.Width)/2)*m.cellSize,
		Y: m.origin.Y,
		Z: m.origin.Z + (float64(origin.Z)+float64(fp.Depth)/2)*m.cellSize,
	}
}

// SnapForPlacement snaps a raycast hit point to the world position an
// item with the given footprint would occupy: the hit is resolved to an
// anchor cell, then offset by half the footprint extent.
func (m *Model) SnapForPlacement(hit geom.Vec3, fp Footprint) geom.Vec3 {
	return m.PlacementCenter(m.AnchorCell(hit, fp), fp)
}

// CanPlace reports whether every cell of the footprint at origin is
// in-bounds and either unclaimed or already claimed by self. Pass an
// empty self when the querying item holds no cells.
func (m *Model) CanPlace(origin Coord, fp Footprint, self ItemID) bool {
	return m.tracker.CanPlace(origin, fp, self)
}

// Occupy claims every cell of the footprint at origin for the item.
func (m *Model) Occupy(id ItemID, origin Coord, fp Footprint) error {
	return m.tracker.Claim(id, origin, fp)
}

// Release removes every cell owned by the item and returns the number of
// cells released. Releasing an item that owns nothing is a no-op.
func (m *Model) Release(id ItemID) int {
	return m.tracker.Release(id)
}
