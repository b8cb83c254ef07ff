// Package animation implements the motion reactive grow / shrink light
// animation of the tree.
//
// The Controller is a small state machine evaluated once per tick:
//
//   - Idle: every cell is off. Confirmed motion starts a grow sweep from
//     the bottom of the strip.
//   - Growing: each tick lights one more cell, with a fading trail above
//     the edge, until the whole strip is lit. The fully lit tree is
//     "active": it sparkles with random palette colours and every
//     confirmed motion restarts the on-timer.
//   - Shrinking: once no motion was seen for LedOnDuration the lit region
//     retracts one cell per tick. Motion during shrinking switches back to
//     growing from exactly the current position. Reaching the bottom
//     switches everything off and returns to Idle.
//
// Sensor polling and the timeout check always run before a frame is
// rendered within the same tick.
package animation

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	c "lautenbacher.net/ledtree/config"
	u "lautenbacher.net/ledtree/util"
)

// Strip is the LED hardware boundary. Writes may be buffered until
// Show is called.
type Strip interface {
	Len() int
	SetPixel(index int, col Color)
	Show()
}

// MotionSource delivers the debounced motion signal.
type MotionSource interface {
	Poll(ctx context.Context) bool
}

type Controller struct {
	strip  Strip
	motion MotionSource
	clock  u.Clock
	rng    *rand.Rand

	numLeds       int
	trail         int
	rocketSpeed   time.Duration
	twinkleSpeed  time.Duration
	ledOnDuration time.Duration
	chance        float64
	base          Color
	palette       []Color

	state      State
	lastMotion time.Time

	onTransition func(from, to State)
}

// NewController creates a controller in the Idle state. The number of
// animated cells is cfg.NumLeds, limited to what the strip can show.
func NewController(cfg c.AnimationConfig, strip Strip, motion MotionSource, clock u.Clock, rng *rand.Rand) *Controller {
	palette := make([]Color, 0, len(cfg.LightColours))
	for _, hsv := range cfg.LightColours {
		palette = append(palette, ColorFromHSV(hsv))
	}
	return &Controller{
		strip:         strip,
		motion:        motion,
		clock:         clock,
		rng:           rng,
		numLeds:       clamp(cfg.NumLeds, 0, strip.Len()),
		trail:         cfg.FadeTrailLength,
		rocketSpeed:   cfg.RocketSpeed,
		twinkleSpeed:  cfg.TwinkleSpeed,
		ledOnDuration: cfg.LedOnDuration,
		chance:        cfg.LightChangeChance,
		base:          ColorFromHSV(cfg.TreeColour),
		palette:       palette,
		state:         Idle{},
	}
}

// OnTransition registers fn to be called after every state change.
// Position changes within a sweep are not transitions.
func (s *Controller) OnTransition(fn func(from, to State)) {
	s.onTransition = fn
}

func (s *Controller) State() State {
	return s.state
}

// Position is the current sweep position, 0 while idle.
func (s *Controller) Position() int {
	return positionOf(s.state)
}

// Active reports whether the tree is fully lit.
func (s *Controller) Active() bool {
	st, ok := s.state.(Growing)
	return ok && st.Position >= s.numLeds
}

// Run evaluates Step forever, waiting the returned delay between steps.
// It only returns when ctx is cancelled.
func (s *Controller) Run(ctx context.Context) error {
	slog.Info("Starting animation controller", "leds", s.numLeds)
	defer slog.Info("Stopping animation controller", "state", s.state.String())
	for {
		delay := s.Step(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.clock.After(delay):
		}
	}
}

// Step runs a single tick: sensor and timeout evaluation first, then at
// most one rendered frame. It returns the delay before the next tick.
func (s *Controller) Step(ctx context.Context) time.Duration {
	s.evaluate(ctx)
	return s.render()
}

// Reset switches the strip off and returns to Idle.
func (s *Controller) Reset() {
	s.draw(ClearFrame(s.strip.Len()))
	if _, idle := s.state.(Idle); !idle {
		s.transition(Idle{}, "Animation reset")
	}
}

func (s *Controller) evaluate(ctx context.Context) {
	switch st := s.state.(type) {
	case Idle:
		if s.numLeds == 0 {
			return
		}
		if s.motion.Poll(ctx) {
			s.lastMotion = s.clock.Now()
			s.transition(Growing{Position: 0}, "Motion detected, growing the tree")
		}
	case Growing:
		if st.Position < s.numLeds {
			// sweep in progress
			return
		}
		if s.motion.Poll(ctx) {
			s.lastMotion = s.clock.Now()
			return
		}
		if s.clock.Now().Sub(s.lastMotion) >= s.ledOnDuration {
			s.transition(Shrinking{Position: s.numLeds}, "No recent motion, shrinking the tree")
		}
	case Shrinking:
		if s.motion.Poll(ctx) {
			s.lastMotion = s.clock.Now()
			s.transition(Growing{Position: st.Position}, "Motion detected while shrinking, growing again")
		}
	}
}

func (s *Controller) render() time.Duration {
	switch st := s.state.(type) {
	case Growing:
		if st.Position >= s.numLeds {
			s.draw(SparkleFrame(s.numLeds, s.chance, s.palette, s.base, s.rng))
			return s.twinkleSpeed
		}
		s.draw(GrowFrame(st.Position, s.numLeds, s.trail, s.base))
		s.state = Growing{Position: st.Position + 1}
		if st.Position+1 == s.numLeds {
			slog.Debug("Tree fully lit")
		}
		return s.rocketSpeed
	case Shrinking:
		if st.Position <= 0 {
			s.draw(ClearFrame(s.numLeds))
			s.transition(Idle{}, "Tree is dark")
			return s.twinkleSpeed
		}
		position := st.Position - 1
		s.draw(ShrinkFrame(position, s.numLeds, s.trail, s.base))
		s.state = Shrinking{Position: position}
		return s.rocketSpeed
	default:
		return s.twinkleSpeed
	}
}

// draw writes frame to the strip, dropping any index the strip does not
// have, and shows it.
func (s *Controller) draw(frame []Pixel) {
	n := s.strip.Len()
	for _, px := range frame {
		if px.Index < 0 || px.Index >= n {
			continue
		}
		s.strip.SetPixel(px.Index, px.Color)
	}
	s.strip.Show()
}

func (s *Controller) transition(to State, msg string) {
	from := s.state
	s.state = to
	slog.Info(msg, "from", from.String(), "to", to.String())
	if s.onTransition != nil {
		s.onTransition(from, to)
	}
}
