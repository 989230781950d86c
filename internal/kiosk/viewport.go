package kiosk

import (
	"math"
	"sync"
)

// VirtualViewport mirrors a container whose size is reported by the display
// client. Size changes are forwarded to the attached listener.
type VirtualViewport struct {
	mu             sync.Mutex
	contentHeight  float64
	viewportHeight float64
	scrollTop      float64
	onResize       func()
}

// NewVirtualViewport returns a viewport of the given size.
func NewVirtualViewport(contentHeight, viewportHeight float64) *VirtualViewport {
	return &VirtualViewport{contentHeight: contentHeight, viewportHeight: viewportHeight}
}

func (v *VirtualViewport) ContentHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.contentHeight
}

func (v *VirtualViewport) ViewportHeight() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.viewportHeight
}

func (v *VirtualViewport) ScrollTop() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollTop
}

func (v *VirtualViewport) SetScrollTop(top float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollTop = v.clamp(top)
}

func (v *VirtualViewport) clamp(top float64) float64 {
	return math.Max(0, math.Min(top, math.Max(0, v.contentHeight-v.viewportHeight)))
}

// OnResize registers the callback invoked after a size change.
func (v *VirtualViewport) OnResize(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onResize = fn
}

// SetSize updates the dimensions and reports whether they changed.
func (v *VirtualViewport) SetSize(contentHeight, viewportHeight float64) bool {
	v.mu.Lock()
	if v.contentHeight == contentHeight && v.viewportHeight == viewportHeight {
		v.mu.Unlock()
		return false
	}
	v.contentHeight = contentHeight
	v.viewportHeight = viewportHeight
	v.scrollTop = v.clamp(v.scrollTop)
	fn := v.onResize
	v.mu.Unlock()

	if fn != nil {
		fn()
	}
	return true
}
