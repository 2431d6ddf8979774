package metrics

import (
	"math"
	"sync"
	"sync/atomic"
)

// tickInterval is the decay period, in seconds, shared by every moving
// average in this package.
const tickInterval = 5.0

// EWMA is an exponentially weighted moving average of an event rate. Events
// accumulate via Update and are folded into the rate on each Tick, which the
// owning Meter drives on a fixed five-second cadence. The zero value is not
// usable; construct with NewEWMA or one of the minute-horizon helpers.
type EWMA struct {
	alpha     float64
	uncounted atomic.Int64

	mu    sync.Mutex
	rate  float64
	ready bool
}

// NewEWMA creates an EWMA with the given decay factor in (0, 1]. Larger
// alphas weight recent activity more heavily.
func NewEWMA(alpha float64) *EWMA {
	return &EWMA{alpha: alpha}
}

// NewEWMA1 creates an EWMA with a one-minute horizon.
func NewEWMA1() *EWMA {
	return NewEWMA(1 - math.Exp(-tickInterval/60))
}

// NewEWMA5 creates an EWMA with a five-minute horizon.
func NewEWMA5() *EWMA {
	return NewEWMA(1 - math.Exp(-tickInterval/300))
}

// NewEWMA15 creates an EWMA with a fifteen-minute horizon.
func NewEWMA15() *EWMA {
	return NewEWMA(1 - math.Exp(-tickInterval/900))
}

// Update records n events since the last tick.
func (e *EWMA) Update(n int64) {
	e.uncounted.Add(n)
}

// Tick folds the events recorded since the previous tick into the rate. The
// first tick seeds the rate directly; later ticks decay toward the new
// instantaneous rate by alpha.
func (e *EWMA) Tick() {
	instant := float64(e.uncounted.Swap(0)) / tickInterval

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.ready {
		e.rate += e.alpha * (instant - e.rate)
	} else {
		e.rate = instant
		e.ready = true
	}
}

// Rate returns the current smoothed rate in events per second. It is zero
// until the first tick.
func (e *EWMA) Rate() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rate
}
