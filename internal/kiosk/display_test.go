package kiosk

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay_MountAcquiresAndUnmountReleases(t *testing.T) {
	clock := NewManualClock(epoch)
	var reloads []int64
	cfg := DefaultDisplayConfig()
	cfg.OnReload = func(gen int64) { reloads = append(reloads, gen) }
	d := NewDisplay(clock, cfg, testLogger())

	assert.ErrorIs(t, d.StartCycle(), ErrNotMounted)

	d.Mount()
	d.Mount()
	// clock tick, reload, cycle, panel rotation and one initial delay per viewport
	assert.Equal(t, 6, d.PendingTimers())

	clock.Advance(5 * time.Minute)
	snap := d.Snapshot()
	assert.True(t, snap.Mounted)
	assert.Equal(t, epoch.Add(5*time.Minute), snap.Now)
	assert.Equal(t, int64(1), snap.ReloadGeneration)
	assert.Equal(t, []int64{1}, reloads)
	assert.Equal(t, 1, snap.Rotation.CyclesStarted)
	assert.Equal(t, PhaseIdle, snap.Viewports["plan"].Phase)

	d.Unmount()
	assert.Zero(t, d.PendingTimers())
	assert.Zero(t, clock.Pending())
	assert.False(t, d.Snapshot().Mounted)

	clock.Advance(10 * time.Minute)
	assert.Equal(t, []int64{1}, reloads)
	d.Unmount()
}

func TestDisplay_ReportViewportDrivesScroller(t *testing.T) {
	clock := NewManualClock(epoch)
	d := NewDisplay(clock, DefaultDisplayConfig(), testLogger())
	d.Mount()
	defer d.Unmount()

	clock.Advance(3 * time.Second)
	require.Equal(t, PhaseIdle, d.Snapshot().Viewports["plan"].Phase)

	changed, err := d.ReportViewport("plan", 1200, 400)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, PhaseWaiting, d.Snapshot().Viewports["plan"].Phase)

	clock.Advance(2*time.Second + 100*time.Millisecond)
	assert.Equal(t, PhaseScrollingDown, d.Snapshot().Viewports["plan"].Phase)
	assert.Equal(t, PhaseIdle, d.Snapshot().Viewports["sidebar"].Phase)

	_, err = d.ReportViewport("footer", 10, 10)
	assert.ErrorIs(t, err, ErrUnknownViewport)
	_, err = d.ReportViewport("plan", -1, 10)
	assert.Error(t, err)
}

func TestDisplay_StartCycleAndPanelCount(t *testing.T) {
	clock := NewManualClock(epoch)
	d := NewDisplay(clock, DefaultDisplayConfig(), testLogger())
	d.Mount()
	defer d.Unmount()

	require.NoError(t, d.StartCycle())
	clock.Advance(0)
	assert.Equal(t, FadingOut, d.Snapshot().Rotation.FadeState)

	d.SetPanelCount(4)
	assert.Equal(t, 4, d.Snapshot().Rotation.PanelCount)
}
