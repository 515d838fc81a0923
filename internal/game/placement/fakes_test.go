package placement

import (
	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// fakeBody records transform and simulation calls.
type fakeBody struct {
	pos       geom.Vec3
	yaw       float64
	simulated bool
}

func newFakeBody(pos geom.Vec3, yaw float64) *fakeBody {
	return &fakeBody{pos: pos, yaw: yaw, simulated: true}
}

func (b *fakeBody) Transform() (geom.Vec3, float64) { return b.pos, b.yaw }

func (b *fakeBody) SetTransform(pos geom.Vec3, yaw float64) {
	b.pos = pos
	b.yaw = yaw
}

func (b *fakeBody) SetSimulated(on bool) { b.simulated = on }

// fakeRays serves a fixed ray, or reports lost tracking.
type fakeRays struct {
	ray      geom.Ray
	tracking bool
}

func (r *fakeRays) Ray() (geom.Ray, bool) { return r.ray, r.tracking }

// aimAt points straight down at a world position from above.
func (r *fakeRays) aimAt(x, z float64) {
	r.ray = geom.Ray{Origin: geom.Vec3{X: x, Y: 5, Z: z}, Dir: geom.Vec3{Y: -1}}
	r.tracking = true
}

// fakeRenderer keeps the feedback history.
type fakeRenderer struct {
	applied []Feedback
}

func (r *fakeRenderer) ApplyFeedback(f Feedback) { r.applied = append(r.applied, f) }

func (r *fakeRenderer) last() (Feedback, bool) {
	if len(r.applied) == 0 {
		return 0, false
	}
	return r.applied[len(r.applied)-1], true
}

// fakeHaptics keeps triggered pulses.
type fakeHaptics struct {
	pulses []HapticPulse
}

func (h *fakeHaptics) Trigger(intensity, duration float64) {
	h.pulses = append(h.pulses, HapticPulse{Intensity: intensity, Duration: duration})
}

// fakeHooks vetoes configurable defs and records OnPlace calls.
type fakeHooks struct {
	veto   map[string]bool
	placed []string
}

func (h *fakeHooks) CanPlace(defID string, _ grid.Coord) bool { return !h.veto[defID] }

func (h *fakeHooks) OnPlace(defID string, _ grid.Coord) { h.placed = append(h.placed, defID) }

// fakeSink collects recorded attempts, optionally failing.
type fakeSink struct {
	attempts []Attempt
	err      error
}

func (s *fakeSink) Record(a Attempt) error {
	if s.err != nil {
		return s.err
	}
	s.attempts = append(s.attempts, a)
	return nil
}
