package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

func newLifecycle(t *testing.T, m *grid.Model, policy FailurePolicy) (*Lifecycle, *fakeBody) {
	t.Helper()
	body := newFakeBody(geom.Vec3{X: 1, Y: 0.5, Z: 1}, 0)
	l, err := NewLifecycle("crate", "crate_small", grid.Footprint{Width: 2, Depth: 2, Height: 1}, m, body, policy, zap.NewNop())
	require.NoError(t, err)
	return l, body
}

func TestNewLifecycleValidation(t *testing.T) {
	m := newGrid(t)
	body := newFakeBody(geom.Vec3{}, 0)

	_, err := NewLifecycle("", "d", grid.Footprint{Width: 1, Depth: 1}, m, body, PolicyDrop, nil)
	assert.Error(t, err)

	_, err = NewLifecycle("crate", "d", grid.Footprint{Width: 1, Depth: 1}, m, nil, PolicyDrop, nil)
	assert.Error(t, err)
}

func TestNewLifecycleClampsFootprint(t *testing.T) {
	m := newGrid(t)
	body := newFakeBody(geom.Vec3{}, 0)
	l, err := NewLifecycle("crate", "d", grid.Footprint{Width: 0, Depth: -1, Height: 1}, m, body, PolicyDrop, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 1, l.Footprint().Width)
	assert.Equal(t, 1, l.Footprint().Depth)
}

func TestMissingGridDisablesPlacementOnly(t *testing.T) {
	body := newFakeBody(geom.Vec3{}, 0)
	l, err := NewLifecycle("crate", "d", grid.Footprint{Width: 1, Depth: 1}, nil, body, PolicyDrop, zap.NewNop())
	require.NoError(t, err, "missing grid is not fatal")
	assert.False(t, l.PlacementEnabled())

	// Grab and drop still work.
	l.OnGrabbed()
	assert.Equal(t, StateHeld, l.CurrentState())
	assert.Nil(t, l.EnterPreview(), "preview refused without a grid")
	assert.Equal(t, StateHeld, l.CurrentState())
	l.OnReleased()
	assert.Equal(t, StateFree, l.CurrentState())
}

func TestGrabHoldsAndStopsSimulation(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyDrop)

	l.OnGrabbed()
	assert.Equal(t, StateHeld, l.CurrentState())
	assert.False(t, body.simulated)
}

func TestGrabIgnoredWhileHeld(t *testing.T) {
	m := newGrid(t)
	l, _ := newLifecycle(t, m, PolicyDrop)

	l.OnGrabbed()
	l.OnGrabbed()
	assert.Equal(t, StateHeld, l.CurrentState())
}

func TestPreviewSpawnsAndTearsDownProxy(t *testing.T) {
	m := newGrid(t)
	l, _ := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()

	proxy := l.EnterPreview()
	require.NotNil(t, proxy)
	assert.Equal(t, StatePreviewing, l.CurrentState())
	assert.Same(t, proxy, l.Proxy())
	assert.False(t, proxy.Disposed())
	assert.NotNil(t, proxy.Watcher())

	l.ExitPreview()
	assert.Equal(t, StateHeld, l.CurrentState())
	assert.Nil(t, l.Proxy())
	assert.True(t, proxy.Disposed())
	assert.True(t, proxy.Watcher().Disposed(), "watcher dies with the proxy")
}

func TestEnterPreviewRequiresHeld(t *testing.T) {
	m := newGrid(t)
	l, _ := newLifecycle(t, m, PolicyDrop)
	assert.Nil(t, l.EnterPreview())
}

func TestAnchorClaimsAndLocks(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()
	proxy := l.EnterPreview()

	target := m.PlacementCenter(grid.Coord{X: 0, Z: 0}, l.Footprint())
	require.NoError(t, l.Anchor(grid.Coord{X: 0, Z: 0}, target, 90))

	assert.Equal(t, StateAnchored, l.CurrentState())
	assert.True(t, proxy.Disposed())
	assert.False(t, body.simulated)
	assert.Equal(t, target, body.pos)
	assert.Equal(t, 90.0, body.yaw)
	assert.ElementsMatch(t,
		[]grid.Coord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1}, {X: 1, Z: 1}},
		m.Tracker().CellsOwnedBy("crate"),
	)
}

func TestAnchorOnlyWhilePreviewing(t *testing.T) {
	m := newGrid(t)
	l, _ := newLifecycle(t, m, PolicyDrop)
	assert.Error(t, l.Anchor(grid.Coord{X: 0, Z: 0}, geom.Vec3{}, 0))

	l.OnGrabbed()
	assert.Error(t, l.Anchor(grid.Coord{X: 0, Z: 0}, geom.Vec3{}, 0))
}

func TestRegrabReleasesOccupancy(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()
	l.EnterPreview()
	require.NoError(t, l.Anchor(grid.Coord{X: 2, Z: 2}, m.PlacementCenter(grid.Coord{X: 2, Z: 2}, l.Footprint()), 0))
	require.Equal(t, 4, m.Tracker().OccupiedCount())

	l.OnGrabbed()
	assert.Equal(t, StateHeld, l.CurrentState())
	assert.Equal(t, 0, m.Tracker().OccupiedCount(), "re-grab fully releases the old claim")
	assert.False(t, body.simulated)
}

func TestDropOutsidePlacementModeKeepsOccupancyAndRestoresPhysics(t *testing.T) {
	m := newGrid(t)
	require.NoError(t, m.Occupy("bench", grid.Coord{X: 5, Z: 5}, grid.Footprint{Width: 1, Depth: 1}))

	l, body := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()
	l.OnReleased()

	assert.Equal(t, StateFree, l.CurrentState())
	assert.True(t, body.simulated, "physics resumes on drop")
	assert.Equal(t, 1, m.Tracker().OccupiedCount(), "another item's occupancy is untouched")
	assert.Nil(t, m.Tracker().CellsOwnedBy("crate"))
}

func TestDropPolicyDropKeepsTransform(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()
	body.SetTransform(geom.Vec3{X: 7, Y: 2, Z: 3}, 45)

	l.Drop()
	assert.Equal(t, geom.Vec3{X: 7, Y: 2, Z: 3}, body.pos)
	assert.Equal(t, 45.0, body.yaw)
}

func TestDropPolicyRestoreRewindsTransform(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyRestore)
	start := body.pos
	startYaw := body.yaw

	l.OnGrabbed()
	body.SetTransform(geom.Vec3{X: 7, Y: 2, Z: 3}, 45)

	l.Drop()
	assert.Equal(t, start, body.pos)
	assert.Equal(t, startYaw, body.yaw)
	assert.True(t, body.simulated)
}

func TestDropWhilePreviewingTearsDownProxy(t *testing.T) {
	m := newGrid(t)
	l, _ := newLifecycle(t, m, PolicyDrop)
	l.OnGrabbed()
	proxy := l.EnterPreview()

	l.Drop()
	assert.Equal(t, StateFree, l.CurrentState())
	assert.True(t, proxy.Disposed())
	assert.Nil(t, l.Proxy())
}

func TestSetAnchoredToggle(t *testing.T) {
	m := newGrid(t)
	l, body := newLifecycle(t, m, PolicyDrop)

	l.SetAnchored(true)
	assert.Equal(t, StateFree, l.CurrentState(), "cannot anchor a free item")

	l.OnGrabbed()
	l.SetAnchored(true)
	assert.Equal(t, StateAnchored, l.CurrentState())
	assert.False(t, body.simulated)

	l.SetAnchored(false)
	assert.Equal(t, StateFree, l.CurrentState())
	assert.True(t, body.simulated)
}
