package placement

import "github.com/erin-fowler/buildmode/internal/game/geom"

// Feedback is the tri-state placement signal shown on the grid surface
// and the preview proxy while aiming.
type Feedback int

const (
	// FeedbackNoTarget: the ray misses the grid entirely.
	FeedbackNoTarget Feedback = iota
	// FeedbackInvalid: the candidate is on the grid but refused.
	FeedbackInvalid
	// FeedbackValid: the candidate would commit successfully.
	FeedbackValid
)

// String returns a human-readable feedback label.
func (f Feedback) String() string {
	switch f {
	case FeedbackNoTarget:
		return "no-target"
	case FeedbackInvalid:
		return "invalid"
	case FeedbackValid:
		return "valid"
	default:
		return "unknown"
	}
}

// RaySource supplies the current pointing ray. Ok is false while the
// controller is not tracking.
type RaySource interface {
	Ray() (ray geom.Ray, ok bool)
}

// Renderer receives the per-tick feedback signal. Implementations apply
// it to the grid surface and preview proxy materials.
type Renderer interface {
	ApplyFeedback(f Feedback)
}

// Haptics receives commit pulses.
type Haptics interface {
	Trigger(intensity, duration float64)
}

// Body is the physical side of a placeable item: its world transform and
// its physics simulation toggle. The engine drives it; it never reads
// back asynchronously.
type Body interface {
	Transform() (pos geom.Vec3, yawDeg float64)
	SetTransform(pos geom.Vec3, yawDeg float64)
	SetSimulated(on bool)
}
