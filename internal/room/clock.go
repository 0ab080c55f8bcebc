package room

import "time"

// Timer is the cancellable handle returned by a Scheduler.
type Timer interface {
	Stop() bool
}

// Scheduler creates one-shot timers. Rooms take it as a dependency so tests
// can fire timers by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// TickerSource creates the periodic tick channel that drives a game loop.
type TickerSource interface {
	NewTicker(d time.Duration) Ticker
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// SystemClock is the wall-clock Scheduler and TickerSource used outside tests.
var SystemClock = realClock{}

type timerKind int

const (
	timerReconnect timerKind = iota
	timerCatch
)

type timerEvent struct {
	kind timerKind
	gen  uint64
}

// pendingTimer is a room-owned timer slot: either empty or one live timer.
// gen increases on every arm and cancel so a fire that raced a cancel is dropped.
type pendingTimer struct {
	timer Timer
	gen   uint64
}

func (p *pendingTimer) active() bool {
	return p.timer != nil
}

func (p *pendingTimer) cancel() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
}

// matches consumes the slot if ev belongs to the currently armed timer.
func (p *pendingTimer) matches(ev timerEvent) bool {
	if p.timer == nil || ev.gen != p.gen {
		return false
	}
	p.timer = nil
	return true
}
