package main

import (
	"sync"

	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
	"github.com/erin-fowler/buildmode/internal/game/item"
	"github.com/erin-fowler/buildmode/internal/game/placement"
)

// hostDriver is a headless stand-in for the engine integration surface.
// A real host supplies controller rays, a preview material renderer, and
// controller haptics; this one holds a settable ray and logs the outward
// signals so the simulator is observable from a terminal.
type hostDriver struct {
	mu       sync.Mutex
	ray      geom.Ray
	tracking bool

	logger   *zap.Logger
	last     placement.Feedback
	haveLast bool
}

func newHostDriver(logger *zap.Logger) *hostDriver {
	return &hostDriver{logger: logger}
}

// Aim points the driver's ray straight down at a world position.
func (d *hostDriver) Aim(x, z float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ray = geom.Ray{
		Origin: geom.Vec3{X: x, Y: 5, Z: z},
		Dir:    geom.Vec3{X: 0.01, Y: -1, Z: 0.01},
	}
	d.tracking = true
}

// LoseTracking simulates the controller leaving the tracked volume.
func (d *hostDriver) LoseTracking() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tracking = false
}

// Ray implements placement.RaySource.
func (d *hostDriver) Ray() (geom.Ray, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ray, d.tracking
}

// ApplyFeedback implements placement.Renderer by logging transitions.
func (d *hostDriver) ApplyFeedback(f placement.Feedback) {
	if d.haveLast && d.last == f {
		return
	}
	d.last = f
	d.haveLast = true
	d.logger.Debug("placement feedback", zap.String("state", f.String()))
}

// Trigger implements placement.Haptics.
func (d *hostDriver) Trigger(intensity, duration float64) {
	d.logger.Debug("haptic pulse",
		zap.Float64("intensity", intensity),
		zap.Float64("duration", duration),
	)
}

// scriptedHost advances the placement session and plays a short scripted
// scenario against it: grab an item, preview it over the grid center,
// and commit. It keeps all session calls on the loop goroutine.
type scriptedHost struct {
	session  *placement.Session
	driver   *hostDriver
	model    *grid.Model
	registry *item.Registry
	policy   placement.FailurePolicy
	logger   *zap.Logger

	tick     uint64
	tickRate uint64
}

func newScriptedHost(session *placement.Session, driver *hostDriver, model *grid.Model, registry *item.Registry, policy placement.FailurePolicy, tickRate int, logger *zap.Logger) *scriptedHost {
	return &scriptedHost{
		session:  session,
		driver:   driver,
		model:    model,
		registry: registry,
		policy:   policy,
		logger:   logger,
		tickRate: uint64(tickRate),
	}
}

// Tick implements sim.Ticker.
func (h *scriptedHost) Tick(dt float64) {
	h.tick++
	switch h.tick {
	case 1:
		h.grabFirstItem()
	case h.tickRate:
		centerX := float64(h.model.Width()) * h.model.CellSize() / 2
		centerZ := float64(h.model.Height()) * h.model.CellSize() / 2
		h.driver.Aim(centerX, centerZ)
	case 2 * h.tickRate:
		h.session.Release()
	}
	h.session.Tick(dt)
}

func (h *scriptedHost) grabFirstItem() {
	var def *item.Def
	for _, d := range h.registry.All() {
		if def == nil || d.ID < def.ID {
			def = d
		}
	}
	if def == nil {
		h.logger.Warn("no item definitions loaded, demo scenario skipped")
		return
	}

	inst := item.NewInstance(def, geom.Vec3{Y: h.model.PlaneY() + 1}, 0)
	lc, err := placement.NewLifecycle(inst.ID(), def.ID, def.Footprint(), h.model, inst, h.policy, h.logger)
	if err != nil {
		h.logger.Error("creating item lifecycle", zap.Error(err))
		return
	}
	if err := h.session.Grab(lc); err != nil {
		h.logger.Error("grabbing demo item", zap.Error(err))
		return
	}
	h.session.EnterPlacementMode()
	h.logger.Info("demo scenario started",
		zap.String("item", string(inst.ID())),
		zap.String("def", def.ID),
	)
}
