// Package timer implements scene-scoped countdown timers.
package timer

import (
	"errors"

	"github.com/vovakirdan/gridstage/internal/core"
)

var (
	// ErrTimerNotArmed is returned by Start when no timeout callback is set.
	ErrTimerNotArmed = errors.New("timer: started without a timeout callback")
	// ErrInvalidArgument is returned for negative intervals, timescales or
	// repeat counts below -1.
	ErrInvalidArgument = errors.New("timer: invalid argument")
)

// Forever makes a timer repeat until stopped.
const Forever = -1

// Status is the timer state.
type Status int

const (
	Stopped Status = iota
	Running
	Paused
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Callback receives the timer that triggered it.
type Callback func(*Timer)

// Timer counts down an interval and fires OnTimeout when it elapses. A
// repeat count of 0 fires once, N fires N+1 times and Forever never stops.
type Timer struct {
	interval      core.Time
	remaining     core.Time
	repeat        int
	dispatchCount int
	timescale     float64
	status        Status

	onStart   Callback
	onPause   Callback
	onResume  Callback
	onStop    Callback
	onRestart Callback
	onUpdate  Callback
	onTimeout Callback
}

// New creates a stopped timer.
func New(interval core.Time, repeat int) (*Timer, error) {
	t := &Timer{timescale: 1}
	if err := t.SetInterval(interval); err != nil {
		return nil, err
	}
	if err := t.SetRepeatCount(repeat); err != nil {
		return nil, err
	}
	t.remaining = interval
	return t, nil
}

// SetInterval changes the interval. The countdown in progress is not reset.
func (t *Timer) SetInterval(interval core.Time) error {
	if interval < 0 {
		return ErrInvalidArgument
	}
	t.interval = interval
	return nil
}

// Interval returns the countdown length.
func (t *Timer) Interval() core.Time { return t.interval }

// SetRepeatCount sets how many extra times the timer fires after the first.
func (t *Timer) SetRepeatCount(n int) error {
	if n < Forever {
		return ErrInvalidArgument
	}
	t.repeat = n
	return nil
}

// RepeatCount returns the repeat count.
func (t *Timer) RepeatCount() int { return t.repeat }

// SetTimescale scales the time fed to Update. Zero freezes the countdown.
func (t *Timer) SetTimescale(scale float64) error {
	if scale < 0 {
		return ErrInvalidArgument
	}
	t.timescale = scale
	return nil
}

// Timescale returns the timer's own time multiplier.
func (t *Timer) Timescale() float64 { return t.timescale }

func (t *Timer) OnStart(cb Callback)   { t.onStart = cb }
func (t *Timer) OnPause(cb Callback)   { t.onPause = cb }
func (t *Timer) OnResume(cb Callback)  { t.onResume = cb }
func (t *Timer) OnStop(cb Callback)    { t.onStop = cb }
func (t *Timer) OnRestart(cb Callback) { t.onRestart = cb }
func (t *Timer) OnUpdate(cb Callback)  { t.onUpdate = cb }
func (t *Timer) OnTimeout(cb Callback) { t.onTimeout = cb }

// Start runs a stopped timer. It does nothing if already running or paused.
func (t *Timer) Start() error {
	if t.onTimeout == nil {
		return ErrTimerNotArmed
	}
	if t.status != Stopped {
		return nil
	}
	t.status = Running
	fire(t.onStart, t)
	return nil
}

// Pause freezes a running timer.
func (t *Timer) Pause() {
	if t.status != Running {
		return
	}
	t.status = Paused
	fire(t.onPause, t)
}

// Resume continues a paused timer.
func (t *Timer) Resume() {
	if t.status != Paused {
		return
	}
	t.status = Running
	fire(t.onResume, t)
}

// Stop halts the timer without firing the timeout and rewinds the
// countdown.
func (t *Timer) Stop() {
	if t.status == Stopped {
		return
	}
	t.status = Stopped
	t.remaining = t.interval
	fire(t.onStop, t)
}

// Restart rewinds the countdown and the dispatch count and runs the timer
// from any state.
func (t *Timer) Restart() error {
	if t.onTimeout == nil {
		return ErrTimerNotArmed
	}
	t.remaining = t.interval
	t.dispatchCount = 0
	t.status = Running
	fire(t.onRestart, t)
	return nil
}

// ForceTimeout stops the timer and fires the timeout callback.
func (t *Timer) ForceTimeout() {
	if t.status == Stopped {
		return
	}
	t.status = Stopped
	t.dispatchCount++
	t.remaining = 0
	fire(t.onTimeout, t)
}

// Update advances a running timer by dt scaled by its timescale.
func (t *Timer) Update(dt core.Time) {
	if t.status != Running {
		return
	}
	t.remaining -= core.ScaleTime(dt, t.timescale)
	fire(t.onUpdate, t)

	if t.remaining > 0 {
		return
	}
	t.dispatchCount++
	fire(t.onTimeout, t)

	// The timeout callback may have stopped or restarted the timer.
	if t.status != Running || t.remaining > 0 {
		return
	}
	if t.repeat == Forever || t.dispatchCount <= t.repeat {
		t.remaining = t.interval + t.remaining
		if t.remaining < 0 {
			t.remaining = 0
		}
		return
	}
	t.status = Stopped
	t.remaining = t.interval
}

// Status returns the current state.
func (t *Timer) Status() Status { return t.status }

func (t *Timer) IsRunning() bool { return t.status == Running }
func (t *Timer) IsPaused() bool  { return t.status == Paused }
func (t *Timer) IsStopped() bool { return t.status == Stopped }

// Remaining returns the time left on the current countdown.
func (t *Timer) Remaining() core.Time {
	if t.remaining < 0 {
		return 0
	}
	return t.remaining
}

// Elapsed returns how much of the current countdown has passed.
func (t *Timer) Elapsed() core.Time {
	return t.interval - t.Remaining()
}

// DispatchCount returns how many times the timeout has fired.
func (t *Timer) DispatchCount() int { return t.dispatchCount }

func fire(cb Callback, t *Timer) {
	if cb != nil {
		cb(t)
	}
}
