package kiosk

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RotatorConfig controls the mode cycle and the panel rotation.
type RotatorConfig struct {
	CycleInterval time.Duration
	FadeOut       time.Duration
	Hidden        time.Duration
	FadeIn        time.Duration
	Dwell         time.Duration
	// AlternateModes are shown in order before returning to the dashboard.
	AlternateModes []Mode

	PanelInterval time.Duration
	PanelCount    int
}

// DefaultRotatorConfig returns the timings used on the kiosk.
func DefaultRotatorConfig() RotatorConfig {
	return RotatorConfig{
		CycleInterval:  3 * time.Minute,
		FadeOut:        time.Second,
		FadeIn:         time.Second,
		Dwell:          5 * time.Second,
		AlternateModes: []Mode{ModeLogo, ModeClock},
		PanelInterval:  32 * time.Second,
		PanelCount:     2,
	}
}

// RotationSnapshot is the externally visible rotation state.
type RotationSnapshot struct {
	Mode          Mode      `json:"mode"`
	FadeState     FadeState `json:"fadeState"`
	Opacity       float64   `json:"opacity"`
	CurrentIndex  int       `json:"currentIndex"`
	PanelCount    int       `json:"panelCount"`
	CycleInFlight bool      `json:"cycleInFlight"`
	CyclesStarted int       `json:"cyclesStarted"`
}

// Rotator drives the periodic fade cycle through the alternate modes and
// the independent panel index rotation.
type Rotator struct {
	cfg   RotatorConfig
	scope *Scope
	log   *logrus.Entry

	mu            sync.Mutex
	fade          fadeMachine
	currentIndex  int
	cycle         *Scope
	cycleModes    []Mode
	cycleApplied  int
	cyclesStarted int
	cycleTimer    *Handle
	panelTimer    *Handle
}

// NewRotator creates a rotator whose timers live in a child of parent.
func NewRotator(parent *Scope, cfg RotatorConfig, log *logrus.Entry) *Rotator {
	return &Rotator{
		cfg:   cfg,
		scope: parent.Child(),
		log:   log.WithField("component", "rotator"),
		fade:  newFadeMachine(),
	}
}

// Start schedules the periodic cycle and the panel rotation.
func (r *Rotator) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.CycleInterval > 0 && r.cycleTimer == nil {
		r.cycleTimer = r.scope.Every(r.cfg.CycleInterval, r.StartCycle)
	}
	if r.cfg.PanelInterval > 0 && r.panelTimer == nil {
		r.panelTimer = r.scope.Every(r.cfg.PanelInterval, r.AdvancePanel)
	}
}

// Stop cancels all rotation timers including an in-flight cycle.
func (r *Rotator) Stop() {
	r.scope.Close()
	r.mu.Lock()
	r.cycle = nil
	r.cycleApplied = 0
	r.fade.reset()
	r.mu.Unlock()
}

func (r *Rotator) segments() []Mode {
	targets := make([]Mode, 0, len(r.cfg.AlternateModes)+1)
	targets = append(targets, r.cfg.AlternateModes...)
	return append(targets, ModeDashboard)
}

// StepsPerCycle is the number of timers one cycle registers.
func (r *Rotator) StepsPerCycle() int {
	return 4 * len(r.segments())
}

// StartCycle cancels any cycle in flight and schedules a fresh one. All of
// the new cycle's timers are registered up front in their own scope, one
// per fade transition.
func (r *Rotator) StartCycle() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.scope.Closed() {
		return
	}
	if r.cycle != nil {
		r.cycle.Close()
		r.log.Debug("Cancelled mode cycle still in flight")
	}
	// An interrupted cycle may have left the screen mid-fade.
	r.fade.state = Visible

	cycle := r.scope.Child()
	r.cycle = cycle
	r.cycleModes = r.segments()
	r.cycleApplied = 0
	r.cyclesStarted++

	var offset time.Duration
	step := 0
	at := func(d time.Duration) {
		offset += d
		index := step
		step++
		cycle.After(offset, func() { r.step(cycle, index) })
	}
	for range r.cycleModes {
		at(0)
		at(r.cfg.FadeOut)
		at(r.cfg.Hidden)
		at(r.cfg.FadeIn)
		offset += r.cfg.Dwell
	}
	r.log.WithField("modes", r.cycleModes).Debug("Scheduled mode cycle")
}

// step applies every transition of cycle up to and including index. Timers
// sharing a deadline may fire in any order, so a later step catches up on
// the earlier ones and those become no-ops when they run.
func (r *Rotator) step(cycle *Scope, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cycle != cycle || index < r.cycleApplied {
		return
	}
	for r.cycleApplied <= index {
		r.fade.advance(r.cycleModes[r.cycleApplied/4])
		r.cycleApplied++
	}
	if r.cycleApplied == 4*len(r.cycleModes) {
		r.cycle = nil
		cycle.Close()
		r.log.Debug("Mode cycle finished")
	}
}

// AdvancePanel moves to the next content panel.
func (r *Rotator) AdvancePanel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cfg.PanelCount < 2 {
		return
	}
	r.currentIndex = (r.currentIndex + 1) % r.cfg.PanelCount
}

// SetPanelCount changes the number of rotating panels, keeping the index in range.
func (r *Rotator) SetPanelCount(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n < 0 {
		n = 0
	}
	r.cfg.PanelCount = n
	if n == 0 || r.currentIndex >= n {
		r.currentIndex = 0
	}
}

// PendingCycleTimers counts the timers of the cycle in flight.
func (r *Rotator) PendingCycleTimers() int {
	r.mu.Lock()
	cycle := r.cycle
	r.mu.Unlock()
	if cycle == nil {
		return 0
	}
	return cycle.Pending()
}

// Snapshot returns the current rotation state.
func (r *Rotator) Snapshot() RotationSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return RotationSnapshot{
		Mode:          r.fade.mode,
		FadeState:     r.fade.state,
		Opacity:       r.fade.state.Opacity(),
		CurrentIndex:  r.currentIndex,
		PanelCount:    r.cfg.PanelCount,
		CycleInFlight: r.cycle != nil,
		CyclesStarted: r.cyclesStarted,
	}
}
