package render

import "time"

// DefaultAnimationDuration is the progress transition length used by the
// animated setProgress path.
const DefaultAnimationDuration = 350 * time.Millisecond

// Animator drives one eased progress transition at a time. It holds no
// goroutine; the render loop's tick calls Step. Starting a new transition
// cancels any in-flight one, there is no queuing or blending of seeks.
type Animator struct {
	active    bool
	start     float64
	target    float64
	startedAt time.Time
	duration  time.Duration
	current   float64
}

// Start begins a transition from the current value to target. A zero or
// negative duration snaps immediately.
func (a *Animator) Start(from, target float64, duration time.Duration) {
	if duration <= 0 {
		a.active = false
		a.current = target
		return
	}
	a.active = true
	a.start = from
	a.target = target
	a.duration = duration
	a.startedAt = time.Now()
	a.current = from
}

// Set writes the value directly, cancelling any in-flight transition.
func (a *Animator) Set(value float64) {
	a.active = false
	a.current = value
}

// Step advances the transition to now and returns the current value. The
// terminal frame snaps exactly to the target to avoid floating-point
// residue.
func (a *Animator) Step(now time.Time) float64 {
	if !a.active {
		return a.current
	}
	t := float64(now.Sub(a.startedAt)) / float64(a.duration)
	if t >= 1 {
		a.active = false
		a.current = a.target
		return a.current
	}
	if t < 0 {
		t = 0
	}
	a.current = a.start + (a.target-a.start)*easeInOut(t)
	return a.current
}

// Value returns the last computed value without advancing.
func (a *Animator) Value() float64 { return a.current }

// Animating reports whether a transition is in flight.
func (a *Animator) Animating() bool { return a.active }

// easeInOut is the quadratic ease-in-out curve: slow start, slow finish.
func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}
