package placement

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// Lifecycle is the placement state machine for one placeable item. It
// owns the item's State, the preview proxy while previewing, and the
// side effects of every transition: occupancy release on re-grab,
// physics toggling, proxy spawn and teardown, and the drop-or-restore
// policy on failed commits.
//
// A lifecycle wired without a grid logs an error once and runs with
// placement disabled: the item can still be grabbed and dropped, but
// preview and anchoring are refused. No missing collaborator is fatal.
type Lifecycle struct {
	id        grid.ItemID
	defID     string
	footprint grid.Footprint
	model     *grid.Model
	body      Body
	policy    FailurePolicy
	logger    *zap.Logger

	state    State
	proxy    *PreviewProxy
	disabled bool

	preGrabPos geom.Vec3
	preGrabYaw float64
}

// NewLifecycle creates a lifecycle in StateFree.
//
// A nil model disables placement for this item (logged as an error). A
// non-positive footprint is clamped to 1x1 with a warning.
//
// Precondition: body is non-nil; id is non-empty.
func NewLifecycle(id grid.ItemID, defID string, fp grid.Footprint, model *grid.Model, body Body, policy FailurePolicy, logger *zap.Logger) (*Lifecycle, error) {
	if id == "" {
		return nil, fmt.Errorf("placement: lifecycle requires an item ID")
	}
	if body == nil {
		return nil, fmt.Errorf("placement: lifecycle for %s requires a body", id)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clamped, wasClamped := fp.Clamped()
	if wasClamped {
		logger.Warn("footprint clamped to minimum extent",
			zap.String("item", string(id)),
			zap.Int("width", fp.Width),
			zap.Int("depth", fp.Depth),
		)
	}

	l := &Lifecycle{
		id:        id,
		defID:     defID,
		footprint: clamped,
		model:     model,
		body:      body,
		policy:    policy,
		logger:    logger,
		state:     StateFree,
	}
	if model == nil {
		l.disabled = true
		logger.Error("grid reference missing, placement disabled for item",
			zap.String("item", string(id)),
		)
	}
	return l, nil
}

// ID returns the item's identity.
func (l *Lifecycle) ID() grid.ItemID { return l.id }

// DefID returns the item's catalog definition ID.
func (l *Lifecycle) DefID() string { return l.defID }

// Footprint returns the item's clamped footprint.
func (l *Lifecycle) Footprint() grid.Footprint { return l.footprint }

// CurrentState returns the item's lifecycle state.
func (l *Lifecycle) CurrentState() State { return l.state }

// PlacementEnabled reports whether the item can preview and anchor.
func (l *Lifecycle) PlacementEnabled() bool { return !l.disabled }

// Proxy returns the live preview proxy, or nil outside StatePreviewing.
func (l *Lifecycle) Proxy() *PreviewProxy { return l.proxy }

// OnGrabbed handles an external grab event. From StateFree or
// StateAnchored the item becomes held; a re-grab of an anchored item
// releases all of its occupancy cells first. Grabs in other states are
// ignored.
func (l *Lifecycle) OnGrabbed() {
	switch l.state {
	case StateFree:
		// Fall through to holding.
	case StateAnchored:
		if l.model != nil {
			released := l.model.Release(l.id)
			l.logger.Debug("re-grab released occupancy",
				zap.String("item", string(l.id)),
				zap.Int("cells", released),
			)
		}
	default:
		return
	}

	l.preGrabPos, l.preGrabYaw = l.body.Transform()
	l.body.SetSimulated(false)
	l.state = StateHeld
}

// EnterPreview transitions Held -> Previewing, spawning the preview
// proxy and its collision watcher. Returns nil when the item is not
// held or placement is disabled.
func (l *Lifecycle) EnterPreview() *PreviewProxy {
	if l.state != StateHeld || l.disabled {
		return nil
	}
	l.proxy = NewPreviewProxy(l.id)
	l.state = StatePreviewing
	return l.proxy
}

// ExitPreview transitions Previewing -> Held without committing,
// tearing down the proxy synchronously.
func (l *Lifecycle) ExitPreview() {
	if l.state != StatePreviewing {
		return
	}
	l.teardownProxy()
	l.state = StateHeld
}

// Anchor commits the item: claims its footprint at origin, locks the
// body at the snapped transform, disables simulation, and tears down the
// proxy. Valid only while previewing.
func (l *Lifecycle) Anchor(origin grid.Coord, pos geom.Vec3, yawDeg float64) error {
	if l.state != StatePreviewing {
		return fmt.Errorf("placement: cannot anchor %s from state %s", l.id, l.state)
	}
	if l.disabled || l.model == nil {
		return fmt.Errorf("placement: anchoring disabled for %s", l.id)
	}

	// Release-then-claim keeps ownership exact across re-placement.
	l.model.Release(l.id)
	if err := l.model.Occupy(l.id, origin, l.footprint); err != nil {
		return fmt.Errorf("placement: claiming cells for %s: %w", l.id, err)
	}

	l.teardownProxy()
	l.body.SetTransform(pos, yawDeg)
	l.body.SetSimulated(false)
	l.state = StateAnchored
	return nil
}

// Drop releases the item without anchoring: the proxy (if any) is torn
// down, the failure policy decides whether the body keeps its current
// transform or snaps back to its pre-grab transform, and physics
// simulation resumes. The occupancy map is never touched; a held item
// owns no cells.
func (l *Lifecycle) Drop() {
	if l.state != StateHeld && l.state != StatePreviewing {
		return
	}
	l.teardownProxy()
	if l.policy == PolicyRestore {
		l.body.SetTransform(l.preGrabPos, l.preGrabYaw)
	}
	l.body.SetSimulated(true)
	l.state = StateFree
}

// OnReleased handles an external release event delivered directly to the
// item, outside a placement session: held or previewing items are
// dropped. The session routes release-while-previewing through its
// commit path instead.
func (l *Lifecycle) OnReleased() {
	l.Drop()
}

// SetAnchored forces the anchored flag without touching occupancy. True
// locks the body and disables simulation from any held state; false
// releases an anchored item into StateFree with simulation restored.
// Occupancy bookkeeping stays with Anchor/OnGrabbed; this is the raw
// state toggle for hosts that manage cells themselves.
func (l *Lifecycle) SetAnchored(on bool) {
	if on {
		if l.state != StateHeld && l.state != StatePreviewing {
			return
		}
		l.teardownProxy()
		l.body.SetSimulated(false)
		l.state = StateAnchored
		return
	}
	if l.state != StateAnchored {
		return
	}
	l.body.SetSimulated(true)
	l.state = StateFree
}

func (l *Lifecycle) teardownProxy() {
	if l.proxy != nil {
		l.proxy.Dispose()
		l.proxy = nil
	}
}
