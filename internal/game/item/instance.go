package item

import (
	"github.com/google/uuid"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// Instance is one concrete placeable item in the scene. It carries its
// own transform and a physics-simulation flag, satisfying the placement
// engine's Body interface.
type Instance struct {
	id  grid.ItemID
	def *Def

	pos       geom.Vec3
	yawDeg    float64
	simulated bool
}

// NewInstance spawns an instance of def at the given transform, with
// physics simulation enabled and a fresh unique ID.
//
// Precondition: def must not be nil.
func NewInstance(def *Def, pos geom.Vec3, yawDeg float64) *Instance {
	return &Instance{
		id:        grid.ItemID(uuid.New().String()),
		def:       def,
		pos:       pos,
		yawDeg:    yawDeg,
		simulated: true,
	}
}

// ID returns the instance's unique identity.
func (i *Instance) ID() grid.ItemID { return i.id }

// Def returns the instance's catalog definition.
func (i *Instance) Def() *Def { return i.def }

// Transform returns the instance's world position and yaw in degrees.
func (i *Instance) Transform() (geom.Vec3, float64) {
	return i.pos, i.yawDeg
}

// SetTransform moves the instance.
func (i *Instance) SetTransform(pos geom.Vec3, yawDeg float64) {
	i.pos = pos
	i.yawDeg = yawDeg
}

// SetSimulated toggles physics simulation for the instance.
func (i *Instance) SetSimulated(on bool) {
	i.simulated = on
}

// Simulated reports whether physics simulation is active.
func (i *Instance) Simulated() bool { return i.simulated }
