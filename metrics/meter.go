package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Meter tracks the throughput of an event stream as 1-, 5-, and 15-minute
// moving averages plus a lifetime mean, in the manner of Unix load averages.
// All methods are safe for concurrent use.
type Meter struct {
	name  string
	count atomic.Int64

	rate1   *EWMA
	rate5   *EWMA
	rate15  *EWMA
	started time.Time

	mu       sync.Mutex
	lastTick time.Time
}

// NewMeter creates a Meter with the given name.
func NewMeter(name string) *Meter {
	now := time.Now()
	return &Meter{
		name:     name,
		rate1:    NewEWMA1(),
		rate5:    NewEWMA5(),
		rate15:   NewEWMA15(),
		started:  now,
		lastTick: now,
	}
}

// Mark records n events.
func (m *Meter) Mark(n int64) {
	m.count.Add(n)
	m.rate1.Update(n)
	m.rate5.Update(n)
	m.rate15.Update(n)
	m.tick()
}

// tick advances the moving averages by however many whole five-second
// periods have elapsed since the last tick.
func (m *Meter) tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	period := time.Duration(tickInterval * float64(time.Second))
	now := time.Now()
	for now.Sub(m.lastTick) >= period {
		m.rate1.Tick()
		m.rate5.Tick()
		m.rate15.Tick()
		m.lastTick = m.lastTick.Add(period)
	}
}

// Count returns the total number of events recorded.
func (m *Meter) Count() int64 {
	return m.count.Load()
}

// Rate1 returns the one-minute moving average rate in events per second.
func (m *Meter) Rate1() float64 {
	m.tick()
	return m.rate1.Rate()
}

// Rate5 returns the five-minute moving average rate in events per second.
func (m *Meter) Rate5() float64 {
	m.tick()
	return m.rate5.Rate()
}

// Rate15 returns the fifteen-minute moving average rate in events per second.
func (m *Meter) Rate15() float64 {
	m.tick()
	return m.rate15.Rate()
}

// RateMean returns the lifetime mean rate in events per second.
func (m *Meter) RateMean() float64 {
	elapsed := time.Since(m.started).Seconds()
	if elapsed == 0 {
		return 0
	}
	return float64(m.count.Load()) / elapsed
}

// Name returns the meter's registered name.
func (m *Meter) Name() string { return m.name }
