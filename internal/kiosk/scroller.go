package kiosk

import (
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MinScrollDuration keeps short containers from flashing through their content.
const MinScrollDuration = 3 * time.Second

// ScrollDuration is the time needed to travel distance pixels at
// pixelsPerSecond, never less than MinScrollDuration.
func ScrollDuration(distance, pixelsPerSecond float64) time.Duration {
	if pixelsPerSecond <= 0 || distance <= 0 {
		return MinScrollDuration
	}
	d := time.Duration(distance * 1000 / pixelsPerSecond * float64(time.Millisecond))
	if d < MinScrollDuration {
		return MinScrollDuration
	}
	return d
}

// EaseInOut is the cosine ease curve 0.5 - cos(t*pi)/2 with t clamped to [0, 1].
func EaseInOut(t float64) float64 {
	t = math.Max(0, math.Min(1, t))
	return 0.5 - math.Cos(t*math.Pi)/2
}

// Viewport is a scrollable container.
type Viewport interface {
	ContentHeight() float64
	ViewportHeight() float64
	ScrollTop() float64
	SetScrollTop(top float64)
}

// ScrollableDistance is how far v can scroll.
func ScrollableDistance(v Viewport) float64 {
	return math.Max(0, v.ContentHeight()-v.ViewportHeight())
}

// ScrollerConfig tunes one auto-scrolling container.
type ScrollerConfig struct {
	InitialDelay    time.Duration
	Pause           time.Duration
	PixelsPerSecond float64
	FrameInterval   time.Duration
}

// DefaultScrollerConfig returns the kiosk defaults.
func DefaultScrollerConfig() ScrollerConfig {
	return ScrollerConfig{
		InitialDelay:    2 * time.Second,
		Pause:           5 * time.Second,
		PixelsPerSecond: 40,
		FrameInterval:   16 * time.Millisecond,
	}
}

// ScrollPhase describes what a scroller is doing.
type ScrollPhase string

const (
	PhaseWaiting       ScrollPhase = "waiting"
	PhaseIdle          ScrollPhase = "idle"
	PhaseScrollingDown ScrollPhase = "scrolling-down"
	PhasePausedBottom  ScrollPhase = "paused-bottom"
	PhaseScrollingUp   ScrollPhase = "scrolling-up"
	PhasePausedTop     ScrollPhase = "paused-top"
	PhaseStopped       ScrollPhase = "stopped"
)

// ScrollSnapshot is the externally visible scroller state.
type ScrollSnapshot struct {
	Phase          ScrollPhase `json:"phase"`
	ScrollTop      float64     `json:"scrollTop"`
	ContentHeight  float64     `json:"contentHeight"`
	ViewportHeight float64     `json:"viewportHeight"`
	Loops          int         `json:"loops"`
}

// Scroller moves a viewport down and back up forever, pausing at both ends.
// Progress is derived from elapsed time, so late frames catch up instead of
// slowing the animation down.
type Scroller struct {
	parent *Scope
	vp     Viewport
	cfg    ScrollerConfig
	log    *logrus.Entry

	mu    sync.Mutex
	run   *Scope
	gen   int
	alive bool
	phase ScrollPhase
	loops int
}

// NewScroller creates a scroller for vp; it does nothing until Start.
func NewScroller(parent *Scope, vp Viewport, cfg ScrollerConfig, log *logrus.Entry) *Scroller {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = 16 * time.Millisecond
	}
	return &Scroller{
		parent: parent,
		vp:     vp,
		cfg:    cfg,
		log:    log,
		phase:  PhaseStopped,
	}
}

// Start begins the scroll loop after the initial delay.
func (s *Scroller) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.parent.Closed() {
		return
	}
	s.alive = true
	s.restartLocked()
}

// Resize cancels the running animation and starts over after the initial
// delay, picking up the new content size.
func (s *Scroller) Resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.alive {
		return
	}
	s.restartLocked()
}

// Stop cancels all timers. Frames already queued become no-ops.
func (s *Scroller) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alive = false
	s.phase = PhaseStopped
	if s.run != nil {
		s.run.Close()
		s.run = nil
	}
}

func (s *Scroller) restartLocked() {
	if s.run != nil {
		s.run.Close()
	}
	s.gen++
	s.run = s.parent.Child()
	s.phase = PhaseWaiting
	gen := s.gen
	s.run.After(s.cfg.InitialDelay, func() { s.begin(gen) })
}

// current reports whether gen is still the live run. Callers hold s.mu.
func (s *Scroller) current(gen int) bool {
	return s.alive && s.gen == gen
}

func (s *Scroller) begin(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return
	}
	if ScrollableDistance(s.vp) <= 0 {
		// Re-checked on the next Resize.
		s.phase = PhaseIdle
		s.log.Debug("Content fits viewport, not scrolling")
		return
	}
	s.loopLocked(gen)
}

func (s *Scroller) loopLocked(gen int) {
	s.animateLocked(gen, PhaseScrollingDown, ScrollableDistance(s.vp), PhasePausedBottom, func() {
		s.animateLocked(gen, PhaseScrollingUp, 0, PhasePausedTop, func() {
			s.loops++
			if ScrollableDistance(s.vp) <= 0 {
				s.phase = PhaseIdle
				return
			}
			s.loopLocked(gen)
		})
	})
}

// animateLocked eases the viewport to target, then pauses and calls next
// with s.mu held.
func (s *Scroller) animateLocked(gen int, phase ScrollPhase, target float64, pause ScrollPhase, next func()) {
	run := s.run
	clock := run.Clock()
	start := s.vp.ScrollTop()
	target = math.Min(ScrollableDistance(s.vp), math.Max(0, target))
	duration := ScrollDuration(ScrollableDistance(s.vp), s.cfg.PixelsPerSecond)
	startedAt := clock.Now()
	s.phase = phase

	var frame func()
	frame = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if !s.current(gen) {
			return
		}
		progress := math.Min(float64(clock.Now().Sub(startedAt))/float64(duration), 1)
		s.vp.SetScrollTop(start + (target-start)*EaseInOut(progress))
		if progress < 1 {
			run.After(s.cfg.FrameInterval, frame)
			return
		}
		s.phase = pause
		run.After(s.cfg.Pause, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.current(gen) {
				next()
			}
		})
	}
	run.After(s.cfg.FrameInterval, frame)
}

// Snapshot returns the scroller state.
func (s *Scroller) Snapshot() ScrollSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ScrollSnapshot{
		Phase:          s.phase,
		ScrollTop:      s.vp.ScrollTop(),
		ContentHeight:  s.vp.ContentHeight(),
		ViewportHeight: s.vp.ViewportHeight(),
		Loops:          s.loops,
	}
}
