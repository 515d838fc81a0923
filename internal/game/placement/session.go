package placement

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/erin-fowler/buildmode/internal/game/geom"
	"github.com/erin-fowler/buildmode/internal/game/grid"
)

// Hooks lets content scripts participate in placement: CanPlace may veto
// an otherwise valid candidate at commit time, OnPlace runs after a
// successful anchor. Implementations must never panic; a veto is the
// only way to block a commit.
type Hooks interface {
	CanPlace(defID string, origin grid.Coord) bool
	OnPlace(defID string, origin grid.Coord)
}

// Attempt is one recorded commit attempt, for diagnostics.
type Attempt struct {
	Tick   uint64    `json:"tick"`
	Item   string    `json:"item"`
	Def    string    `json:"def"`
	X      int       `json:"x"`
	Z      int       `json:"z"`
	YawDeg float64   `json:"yaw_deg"`
	OK     bool      `json:"ok"`
	Reason string    `json:"reason,omitempty"`
	At     time.Time `json:"at"`
}

// AttemptSink receives commit attempts as they resolve.
type AttemptSink interface {
	Record(a Attempt) error
}

// HapticPulse is one haptic trigger's parameters.
type HapticPulse struct {
	Intensity float64
	Duration  float64
}

// SessionConfig tunes a placement session's outward signals.
type SessionConfig struct {
	SuccessPulse HapticPulse
	FailurePulse HapticPulse
}

// DefaultSessionConfig returns the stock haptic tuning.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		SuccessPulse: HapticPulse{Intensity: 0.8, Duration: 0.10},
		FailurePulse: HapticPulse{Intensity: 0.3, Duration: 0.25},
	}
}

// candidate is the most recent snapped placement computed by Tick.
type candidate struct {
	haveHit bool
	origin  grid.Coord
	pos     geom.Vec3
	yawDeg  float64
}

// Session orchestrates placement for one controller. Each Tick it
// samples the pointing ray, snaps a candidate onto the grid, updates the
// preview proxy, validates, and emits exactly one feedback signal; on
// commit it revalidates the final candidate and either anchors the held
// item or drops it with a diagnostic reason.
//
// Sessions are single-threaded: Tick and the event methods must be
// called from the same loop. One session is the sole writer of its
// grid's occupancy.
type Session struct {
	model     *grid.Model
	validator *Validator
	rays      RaySource
	renderer  Renderer
	haptics   Haptics
	hooks     Hooks
	sink      AttemptSink
	logger    *zap.Logger
	cfg       SessionConfig

	held *Lifecycle
	cand candidate
	tick uint64
}

// NewSession wires a session from its collaborators. The grid and ray
// source are required; renderer, haptics, hooks, and sink may be nil, in
// which case the corresponding signal is disabled (logged once here).
func NewSession(model *grid.Model, rays RaySource, renderer Renderer, haptics Haptics, hooks Hooks, sink AttemptSink, cfg SessionConfig, logger *zap.Logger) (*Session, error) {
	if model == nil {
		return nil, fmt.Errorf("placement: session requires a grid model")
	}
	if rays == nil {
		return nil, fmt.Errorf("placement: session requires a ray source")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		logger.Error("renderer missing, placement feedback disabled")
	}
	if haptics == nil {
		logger.Error("haptics missing, commit pulses disabled")
	}
	return &Session{
		model:     model,
		validator: NewValidator(model),
		rays:      rays,
		renderer:  renderer,
		haptics:   haptics,
		hooks:     hooks,
		sink:      sink,
		logger:    logger,
		cfg:       cfg,
	}, nil
}

// Held returns the lifecycle currently held by the session, if any.
func (s *Session) Held() *Lifecycle { return s.held }

// Grab attaches an item to the session and fires its grab transition.
func (s *Session) Grab(l *Lifecycle) error {
	if l == nil {
		return fmt.Errorf("placement: cannot grab nil item")
	}
	if s.held != nil {
		return fmt.Errorf("placement: session already holds %s", s.held.ID())
	}
	l.OnGrabbed()
	if l.CurrentState() != StateHeld {
		return fmt.Errorf("placement: item %s cannot be grabbed from state %s", l.ID(), l.CurrentState())
	}
	s.held = l
	s.cand = candidate{}
	return nil
}

// EnterPlacementMode starts previewing the held item. Ignored when
// nothing is held or the item's placement is disabled.
func (s *Session) EnterPlacementMode() {
	if s.held == nil {
		return
	}
	if s.held.EnterPreview() == nil {
		s.logger.Warn("placement mode refused",
			zap.String("item", string(s.held.ID())),
			zap.String("state", s.held.CurrentState().String()),
		)
		return
	}
	s.cand = candidate{}
}

// ExitPlacementMode cancels previewing without committing. The proxy and
// watcher are torn down synchronously; the item stays held.
func (s *Session) ExitPlacementMode() {
	if s.held == nil {
		return
	}
	s.held.ExitPreview()
	s.cand = candidate{}
}

// Tick runs one simulation step. While previewing it performs, in fixed
// order: one ray sample, one snap, one validation, and one feedback
// emission. Outside previewing it does nothing.
func (s *Session) Tick(dt float64) {
	s.tick++
	l := s.held
	if l == nil || l.CurrentState() != StatePreviewing {
		return
	}

	ray, ok := s.rays.Ray()
	if !ok {
		s.missTarget()
		return
	}
	hit, ok := ray.IntersectHorizontalPlane(s.model.PlaneY())
	if !ok {
		s.missTarget()
		return
	}

	// Facing comes from the hit normal's horizontal projection; against
	// the flat grid plane that projection is degenerate, so the pointing
	// direction decides instead.
	facing := hit.Normal
	if facing.HorizontalLengthSq() < 1e-12 {
		facing = ray.Dir
	}
	yaw := geom.SnapYawDeg(facing)

	fp := l.Footprint()
	origin := s.model.AnchorCell(hit.Point, fp)
	pos := s.model.PlacementCenter(origin, fp)
	l.Proxy().SetTransform(pos, yaw)

	s.cand = candidate{haveHit: true, origin: origin, pos: pos, yawDeg: yaw}

	verdict := s.validator.Check(origin, fp, l.ID(), l.Proxy().Watcher())
	if verdict.OK {
		s.applyFeedback(FeedbackValid)
	} else {
		s.applyFeedback(FeedbackInvalid)
	}
}

// Release handles the controller release event: while previewing it is a
// commit, otherwise the held item is simply dropped.
func (s *Session) Release() {
	l := s.held
	if l == nil {
		return
	}
	if l.CurrentState() == StatePreviewing {
		s.Commit()
		return
	}
	l.Drop()
	s.held = nil
}

// Commit attempts to anchor the held item at the last candidate. The
// candidate is revalidated first; it may have changed since the last
// preview tick. On failure the item is dropped (or restored, per its
// policy) with a diagnostic reason. Either way the session lets go.
func (s *Session) Commit() {
	l := s.held
	if l == nil || l.CurrentState() != StatePreviewing {
		return
	}

	if !s.cand.haveHit {
		s.fail(l, ReasonNoHit)
		return
	}

	fp := l.Footprint()
	verdict := s.validator.Check(s.cand.origin, fp, l.ID(), l.Proxy().Watcher())
	if verdict.OK && s.hooks != nil && !s.hooks.CanPlace(l.DefID(), s.cand.origin) {
		verdict = Verdict{Reason: ReasonVetoed}
	}
	if !verdict.OK {
		s.fail(l, verdict.Reason)
		return
	}

	if err := l.Anchor(s.cand.origin, s.cand.pos, s.cand.yawDeg); err != nil {
		s.logger.Error("anchor failed after validation",
			zap.String("item", string(l.ID())),
			zap.Error(err),
		)
		s.fail(l, ReasonOccupied)
		return
	}

	s.logger.Info("item anchored",
		zap.String("item", string(l.ID())),
		zap.String("def", l.DefID()),
		zap.String("cell", s.cand.origin.String()),
		zap.Float64("yaw", s.cand.yawDeg),
	)
	if s.haptics != nil {
		s.haptics.Trigger(s.cfg.SuccessPulse.Intensity, s.cfg.SuccessPulse.Duration)
	}
	if s.hooks != nil {
		s.hooks.OnPlace(l.DefID(), s.cand.origin)
	}
	s.record(l, true, ReasonNone)
	s.held = nil
	s.applyFeedback(FeedbackNoTarget)
}

func (s *Session) fail(l *Lifecycle, reason Reason) {
	l.Drop()
	s.logger.Info("placement refused",
		zap.String("item", string(l.ID())),
		zap.String("reason", string(reason)),
	)
	if s.haptics != nil {
		s.haptics.Trigger(s.cfg.FailurePulse.Intensity, s.cfg.FailurePulse.Duration)
	}
	s.record(l, false, reason)
	s.held = nil
	s.applyFeedback(FeedbackNoTarget)
}

func (s *Session) missTarget() {
	s.cand = candidate{}
	s.applyFeedback(FeedbackNoTarget)
}

func (s *Session) applyFeedback(f Feedback) {
	if s.renderer != nil {
		s.renderer.ApplyFeedback(f)
	}
}

func (s *Session) record(l *Lifecycle, ok bool, reason Reason) {
	if s.sink == nil {
		return
	}
	a := Attempt{
		Tick:   s.tick,
		Item:   string(l.ID()),
		Def:    l.DefID(),
		X:      s.cand.origin.X,
		Z:      s.cand.origin.Z,
		YawDeg: s.cand.yawDeg,
		OK:     ok,
		Reason: string(reason),
		At:     time.Now().UTC(),
	}
	if err := s.sink.Record(a); err != nil {
		s.logger.Warn("recording placement attempt", zap.Error(err))
	}
}
