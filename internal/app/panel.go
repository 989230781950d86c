package app

import (
	"context"
	"sync"
	"time"
)

// PanelState is what one dashboard panel shows: the last data loaded, or a
// message when loading failed.
type PanelState[T any] struct {
	Data      T         `json:"data"`
	Loaded    bool      `json:"loaded"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Panel keeps the state of one data source. Each source owns its panel, so
// a failing source never touches another panel.
type Panel[T any] struct {
	errMessage string
	now        func() time.Time

	mu    sync.RWMutex
	state PanelState[T]
}

// NewPanel creates an empty panel. errMessage is shown when a load fails.
func NewPanel[T any](errMessage string) *Panel[T] {
	return &Panel[T]{errMessage: errMessage, now: time.Now}
}

// Load runs load and records its outcome. A failure keeps the previous data
// and sets the panel message.
func (p *Panel[T]) Load(ctx context.Context, load func(ctx context.Context) (T, error)) error {
	data, err := load(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.state.Error = p.errMessage
		return err
	}
	p.state = PanelState[T]{Data: data, Loaded: true, UpdatedAt: p.now()}
	return nil
}

// Restore seeds the panel with data, e.g. from the response cache, unless it
// already holds data.
func (p *Panel[T]) Restore(data T, updatedAt time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.Loaded {
		return
	}
	p.state.Data = data
	p.state.Loaded = true
	p.state.UpdatedAt = updatedAt
}

func (p *Panel[T]) State() PanelState[T] {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// restorePanel seeds panel from the cached payload of key, if any.
func restorePanel[T any](ctx context.Context, c *CacheService, key string, panel *Panel[T]) (bool, error) {
	var data T
	updatedAt, ok, err := c.LoadWithTime(ctx, key, &data)
	if err != nil || !ok {
		return false, err
	}
	panel.Restore(data, updatedAt)
	return true, nil
}
