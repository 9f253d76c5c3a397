package chatstate

import (
	"sync"
	"time"
)

// Cosmetic overlay display windows. Product heuristics, kept literal.
const (
	LoveOverlayTTL      = 3 * time.Second
	ExplosionOverlayTTL = 2 * time.Second
)

// Overlay is a self-clearing display flag backed by a cancelable timer
// tied to the overlay's lifetime, so an auto-clear can never race a torn
// down owner.
type Overlay struct {
	mu       sync.Mutex
	ttl      time.Duration
	kind     string
	timer    *time.Timer
	onChange func()
	closed   bool
}

// NewOverlay builds an overlay that clears itself ttl after each Show.
// onChange may be nil.
func NewOverlay(ttl time.Duration, onChange func()) *Overlay {
	return &Overlay{ttl: ttl, onChange: onChange}
}

// Show raises the overlay with the given kind, restarting the clear timer.
func (o *Overlay) Show(kind string) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	o.kind = kind
	if o.timer != nil {
		o.timer.Stop()
	}
	o.timer = time.AfterFunc(o.ttl, o.clear)
	onChange := o.onChange
	o.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

func (o *Overlay) clear() {
	o.mu.Lock()
	if o.closed || o.kind == "" {
		o.mu.Unlock()
		return
	}
	o.kind = ""
	onChange := o.onChange
	o.mu.Unlock()

	if onChange != nil {
		onChange()
	}
}

// Active returns the currently displayed overlay kind, empty when hidden.
func (o *Overlay) Active() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.kind
}

// Close hides the overlay and cancels its timer for good.
func (o *Overlay) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.kind = ""
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
}
