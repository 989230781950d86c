package kiosk

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	ErrUnknownViewport = errors.New("unknown viewport")
	ErrNotMounted      = errors.New("display is not mounted")
)

// DisplayConfig describes one kiosk screen.
type DisplayConfig struct {
	ClockTick      time.Duration
	ReloadInterval time.Duration
	Rotation       RotatorConfig
	// Viewports maps container names ("plan", "sidebar") to their scroll settings.
	Viewports map[string]ScrollerConfig
	// OnReload runs after every reload tick, outside of any lock.
	OnReload func(generation int64)
}

// DefaultDisplayConfig returns the kiosk defaults with a plan and a sidebar container.
func DefaultDisplayConfig() DisplayConfig {
	sidebar := DefaultScrollerConfig()
	sidebar.Pause = 3 * time.Second
	sidebar.PixelsPerSecond = 30
	return DisplayConfig{
		ClockTick:      time.Second,
		ReloadInterval: 5 * time.Minute,
		Rotation:       DefaultRotatorConfig(),
		Viewports: map[string]ScrollerConfig{
			"plan":    DefaultScrollerConfig(),
			"sidebar": sidebar,
		},
	}
}

// DisplaySnapshot is the full presentation state handed to the display client.
type DisplaySnapshot struct {
	Mounted          bool                      `json:"mounted"`
	Now              time.Time                 `json:"now"`
	ReloadGeneration int64                     `json:"reloadGeneration"`
	Rotation         RotationSnapshot          `json:"rotation"`
	Viewports        map[string]ScrollSnapshot `json:"viewports"`
}

// Display is a mounted dashboard instance. Everything it starts is owned by
// its scope and released by Unmount.
type Display struct {
	clock Clock
	cfg   DisplayConfig
	log   *logrus.Entry

	mu        sync.Mutex
	scope     *Scope
	now       time.Time
	reloadGen int64
	rotator   *Rotator
	viewports map[string]*VirtualViewport
	scrollers map[string]*Scroller
}

// NewDisplay creates an unmounted display.
func NewDisplay(clock Clock, cfg DisplayConfig, log *logrus.Entry) *Display {
	d := &Display{
		clock:     clock,
		cfg:       cfg,
		log:       log.WithField("component", "display"),
		viewports: make(map[string]*VirtualViewport, len(cfg.Viewports)),
		scrollers: make(map[string]*Scroller, len(cfg.Viewports)),
	}
	for name := range cfg.Viewports {
		d.viewports[name] = NewVirtualViewport(0, 0)
	}
	return d
}

// Mount starts the clock tick, the reload timer, the rotation and one
// scroller per viewport. Mounting twice is a no-op.
func (d *Display) Mount() {
	d.mu.Lock()
	if d.scope != nil {
		d.mu.Unlock()
		return
	}
	scope := NewScope(d.clock)
	d.scope = scope
	d.now = d.clock.Now()

	if d.cfg.ClockTick > 0 {
		scope.Every(d.cfg.ClockTick, d.tick)
	}
	if d.cfg.ReloadInterval > 0 {
		scope.Every(d.cfg.ReloadInterval, d.reload)
	}
	d.rotator = NewRotator(scope, d.cfg.Rotation, d.log)

	names := make([]string, 0, len(d.viewports))
	for name := range d.viewports {
		names = append(names, name)
	}
	sort.Strings(names)
	scrollers := make([]*Scroller, 0, len(names))
	for _, name := range names {
		vp := d.viewports[name]
		sc := NewScroller(scope, vp, d.cfg.Viewports[name], d.log.WithField("viewport", name))
		vp.OnResize(sc.Resize)
		d.scrollers[name] = sc
		scrollers = append(scrollers, sc)
	}
	rotator := d.rotator
	d.mu.Unlock()

	rotator.Start()
	for _, sc := range scrollers {
		sc.Start()
	}
	d.log.WithField("viewports", names).Info("Display mounted")
}

// Unmount releases every timer the display acquired.
func (d *Display) Unmount() {
	d.mu.Lock()
	scope := d.scope
	rotator := d.rotator
	scrollers := d.scrollers
	d.scope = nil
	d.rotator = nil
	d.scrollers = make(map[string]*Scroller, len(scrollers))
	d.mu.Unlock()

	if scope == nil {
		return
	}
	for name, sc := range scrollers {
		sc.Stop()
		d.viewports[name].OnResize(nil)
	}
	rotator.Stop()
	scope.Close()
	d.log.Info("Display unmounted")
}

// PendingTimers counts every timer the display currently owns.
func (d *Display) PendingTimers() int {
	d.mu.Lock()
	scope := d.scope
	d.mu.Unlock()
	if scope == nil {
		return 0
	}
	return scope.Pending()
}

func (d *Display) tick() {
	d.mu.Lock()
	d.now = d.clock.Now()
	d.mu.Unlock()
}

func (d *Display) reload() {
	d.mu.Lock()
	d.reloadGen++
	gen := d.reloadGen
	d.mu.Unlock()

	d.log.WithField("generation", gen).Debug("Reload tick")
	if d.cfg.OnReload != nil {
		d.cfg.OnReload(gen)
	}
}

// StartCycle triggers a mode cycle immediately.
func (d *Display) StartCycle() error {
	d.mu.Lock()
	rotator := d.rotator
	d.mu.Unlock()
	if rotator == nil {
		return ErrNotMounted
	}
	rotator.StartCycle()
	return nil
}

// SetPanelCount updates the number of rotating content panels.
func (d *Display) SetPanelCount(n int) {
	d.mu.Lock()
	d.cfg.Rotation.PanelCount = n
	rotator := d.rotator
	d.mu.Unlock()
	if rotator != nil {
		rotator.SetPanelCount(n)
	}
}

// ReportViewport records the size of a container as measured by the client.
func (d *Display) ReportViewport(name string, contentHeight, viewportHeight float64) (bool, error) {
	if contentHeight < 0 || viewportHeight < 0 {
		return false, fmt.Errorf("viewport %q: heights must not be negative", name)
	}
	vp, ok := d.viewports[name]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownViewport, name)
	}
	return vp.SetSize(contentHeight, viewportHeight), nil
}

// Snapshot returns the current presentation state.
func (d *Display) Snapshot() DisplaySnapshot {
	d.mu.Lock()
	snap := DisplaySnapshot{
		Mounted:          d.scope != nil,
		Now:              d.now,
		ReloadGeneration: d.reloadGen,
		Viewports:        make(map[string]ScrollSnapshot, len(d.viewports)),
	}
	rotator := d.rotator
	scrollers := make(map[string]*Scroller, len(d.scrollers))
	for name, sc := range d.scrollers {
		scrollers[name] = sc
	}
	d.mu.Unlock()

	if rotator != nil {
		snap.Rotation = rotator.Snapshot()
	}
	for name, vp := range d.viewports {
		if sc, ok := scrollers[name]; ok {
			snap.Viewports[name] = sc.Snapshot()
			continue
		}
		snap.Viewports[name] = ScrollSnapshot{
			Phase:          PhaseStopped,
			ScrollTop:      vp.ScrollTop(),
			ContentHeight:  vp.ContentHeight(),
			ViewportHeight: vp.ViewportHeight(),
		}
	}
	return snap
}
