package placement

import "github.com/erin-fowler/buildmode/internal/game/grid"

// ColliderID identifies one collider in the scene. A multi-part item has
// several colliders, all reporting the same owning item.
type ColliderID string

// CollisionWatcher accumulates the foreign colliders currently
// overlapping a preview proxy. Overlaps are reported by the hosting
// scene through OnOverlapBegin/OnOverlapEnd; colliders owned by the item
// being placed are filtered out by ownership, not by collider identity,
// so an item's own sub-parts never block it.
//
// After Dispose the watcher reports no collisions and ignores further
// callbacks, so no stale blocked state can survive the preview.
type CollisionWatcher struct {
	selfItem    grid.ItemID
	overlapping map[ColliderID]struct{}
	disposed    bool
}

// NewCollisionWatcher creates a watcher for a preview of the given item.
func NewCollisionWatcher(self grid.ItemID) *CollisionWatcher {
	return &CollisionWatcher{
		selfItem:    self,
		overlapping: make(map[ColliderID]struct{}),
	}
}

// OnOverlapBegin records that collider, owned by owner, began
// overlapping the proxy. Colliders belonging to the item being placed
// are ignored.
func (w *CollisionWatcher) OnOverlapBegin(collider ColliderID, owner grid.ItemID) {
	if w.disposed || owner == w.selfItem {
		return
	}
	w.overlapping[collider] = struct{}{}
}

// OnOverlapEnd records that collider stopped overlapping the proxy.
// Unknown colliders are ignored.
func (w *CollisionWatcher) OnOverlapEnd(collider ColliderID) {
	if w.disposed {
		return
	}
	delete(w.overlapping, collider)
}

// HasBlockingCollision reports whether any foreign collider currently
// overlaps the proxy.
func (w *CollisionWatcher) HasBlockingCollision() bool {
	return len(w.overlapping) > 0
}

// BlockingCount returns the number of overlapping foreign colliders.
func (w *CollisionWatcher) BlockingCount() int {
	return len(w.overlapping)
}

// Dispose clears the overlap set and detaches the watcher. Idempotent.
func (w *CollisionWatcher) Dispose() {
	w.disposed = true
	w.overlapping = make(map[ColliderID]struct{})
}

// Disposed reports whether Dispose has been called.
func (w *CollisionWatcher) Disposed() bool {
	return w.disposed
}
