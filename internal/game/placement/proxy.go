package placement

import (
	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// PreviewProxy is the ephemeral stand-in for a held item while its
// placement is evaluated. It carries the snapped candidate transform and
// owns the collision watcher for its lifetime; disposing the proxy
// disposes the watcher in the same call.
type PreviewProxy struct {
	item     grid.ItemID
	position geom.Vec3
	yawDeg   float64
	watcher  *CollisionWatcher
	disposed bool
}

// NewPreviewProxy spawns a proxy for the item, with a fresh watcher.
func NewPreviewProxy(item grid.ItemID) *PreviewProxy {
	return &PreviewProxy{
		item:    item,
		watcher: NewCollisionWatcher(item),
	}
}

// Item returns the item this proxy stands in for.
func (p *PreviewProxy) Item() grid.ItemID { return p.item }

// Watcher returns the proxy's collision watcher.
func (p *PreviewProxy) Watcher() *CollisionWatcher { return p.watcher }

// SetTransform moves the proxy to the snapped candidate transform.
func (p *PreviewProxy) SetTransform(pos geom.Vec3, yawDeg float64) {
	p.position = pos
	p.yawDeg = yawDeg
}

// Transform returns the proxy's current transform.
func (p *PreviewProxy) Transform() (geom.Vec3, float64) {
	return p.position, p.yawDeg
}

// Dispose tears the proxy down along with its watcher. Idempotent.
func (p *PreviewProxy) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.watcher.Dispose()
}

// Disposed reports whether the proxy has been torn down.
func (p *PreviewProxy) Disposed() bool { return p.disposed }
