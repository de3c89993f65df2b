// Package shortcut resolves two-key keyboard chords ("g" then "c") to console
// routes. State lives in an explicit Detector value; time comes from a Clock.
package shortcut

import (
	"strings"
	"time"
)

// DefaultWindow is how long the first key of a chord stays pending.
const DefaultWindow = time.Second

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// DefaultBindings are the console's "go to" chords.
var DefaultBindings = map[string]string{
	"g c": "/clientes",
	"g p": "/pecas",
	"g s": "/servicos",
	"g r": "/relatorios",
	"g f": "/financeiro",
	"g n": "/notas-fiscais",
	"g d": "/dashboard",
}

// Detector is the chord state machine. It is not safe for concurrent use.
type Detector struct {
	bindings map[string]string
	leaders  map[string]bool
	window   time.Duration
	clock    Clock

	pendingKey string
	expiresAt  time.Time
}

// NewDetector builds a detector over bindings ("<first> <second>" -> route).
// A zero window uses DefaultWindow; a nil clock uses SystemClock.
func NewDetector(bindings map[string]string, window time.Duration, clock Clock) *Detector {
	if window <= 0 {
		window = DefaultWindow
	}
	if clock == nil {
		clock = SystemClock{}
	}

	d := &Detector{
		bindings: make(map[string]string, len(bindings)),
		leaders:  make(map[string]bool),
		window:   window,
		clock:    clock,
	}
	for chord, route := range bindings {
		first, _, ok := strings.Cut(chord, " ")
		if !ok {
			continue
		}
		d.bindings[chord] = route
		d.leaders[first] = true
	}
	return d
}

// Press feeds one key. It returns the bound route when the key completes a
// chord. An expired or unmatched second key is discarded, but may itself start
// a new chord.
func (d *Detector) Press(key string) (string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	now := d.clock.Now()

	if d.pendingKey != "" && !now.Before(d.expiresAt) {
		d.reset()
	}

	if d.pendingKey != "" {
		route, ok := d.bindings[d.pendingKey+" "+key]
		d.reset()
		if ok {
			return route, true
		}
	}

	if d.leaders[key] {
		d.pendingKey = key
		d.expiresAt = now.Add(d.window)
	}
	return "", false
}

// Pending reports whether a chord has started and has not expired.
func (d *Detector) Pending() bool {
	return d.pendingKey != "" && d.clock.Now().Before(d.expiresAt)
}

func (d *Detector) reset() {
	d.pendingKey = ""
	d.expiresAt = time.Time{}
}
