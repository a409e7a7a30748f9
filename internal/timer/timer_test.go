package timer

import (
	"errors"
	"testing"
	"time"
)

func armed(t *testing.T, interval time.Duration, repeat int, fired *int) *Timer {
	t.Helper()
	tm, err := New(interval, repeat)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	tm.OnTimeout(func(*Timer) { *fired++ })
	return tm
}

func TestStartWithoutTimeoutFails(t *testing.T) {
	tm, _ := New(time.Second, 0)
	if err := tm.Start(); !errors.Is(err, ErrTimerNotArmed) {
		t.Errorf("Start() error = %v, expected ErrTimerNotArmed", err)
	}
	if !tm.IsStopped() {
		t.Error("timer running after failed Start")
	}
}

func TestNewRejectsBadArguments(t *testing.T) {
	if _, err := New(-time.Second, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(negative interval) error = %v", err)
	}
	if _, err := New(time.Second, -2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("New(repeat -2) error = %v", err)
	}
}

func TestZeroIntervalOneShot(t *testing.T) {
	fired := 0
	tm := armed(t, 0, 0, &fired)
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	tm.Update(time.Millisecond)

	if fired != 1 {
		t.Errorf("fired = %d, expected 1", fired)
	}
	if !tm.IsStopped() {
		t.Errorf("Status() = %s, expected stopped", tm.Status())
	}
}

func TestRepeatCount(t *testing.T) {
	tests := []struct {
		name   string
		repeat int
		frames int
		want   int
	}{
		{"one shot", 0, 10, 1},
		{"three repeats", 3, 10, 4},
		{"forever", Forever, 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fired := 0
			tm := armed(t, 100*time.Millisecond, tt.repeat, &fired)
			_ = tm.Start()
			for i := 0; i < tt.frames; i++ {
				tm.Update(100 * time.Millisecond)
			}
			if fired != tt.want {
				t.Errorf("fired = %d, expected %d", fired, tt.want)
			}
			if tm.DispatchCount() != tt.want {
				t.Errorf("DispatchCount() = %d, expected %d", tm.DispatchCount(), tt.want)
			}
		})
	}
}

func TestSurplusCarriesOver(t *testing.T) {
	fired := 0
	tm := armed(t, 100*time.Millisecond, Forever, &fired)
	_ = tm.Start()

	tm.Update(130 * time.Millisecond)
	if got := tm.Remaining(); got != 70*time.Millisecond {
		t.Errorf("Remaining() = %v, expected 70ms", got)
	}
}

func TestTimescale(t *testing.T) {
	fired := 0
	tm := armed(t, 100*time.Millisecond, 0, &fired)
	_ = tm.SetTimescale(0)
	_ = tm.Start()
	tm.Update(time.Second)
	if fired != 0 {
		t.Error("timer fired with timescale 0")
	}

	_ = tm.SetTimescale(2)
	tm.Update(50 * time.Millisecond)
	if fired != 1 {
		t.Errorf("fired = %d with timescale 2, expected 1", fired)
	}
}

func TestPauseResumeStop(t *testing.T) {
	var events []string
	fired := 0
	tm := armed(t, 100*time.Millisecond, 0, &fired)
	tm.OnStart(func(*Timer) { events = append(events, "start") })
	tm.OnPause(func(*Timer) { events = append(events, "pause") })
	tm.OnResume(func(*Timer) { events = append(events, "resume") })
	tm.OnStop(func(*Timer) { events = append(events, "stop") })

	_ = tm.Start()
	tm.Pause()
	tm.Update(time.Second)
	tm.Resume()
	tm.Stop()
	tm.Update(time.Second)

	want := []string{"start", "pause", "resume", "stop"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, expected %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("events[%d] = %s, expected %s", i, events[i], want[i])
		}
	}
	if fired != 0 {
		t.Error("Stop() fired the timeout")
	}
}

func TestForceTimeout(t *testing.T) {
	fired := 0
	tm := armed(t, time.Hour, Forever, &fired)
	_ = tm.Start()
	tm.ForceTimeout()
	if fired != 1 || !tm.IsStopped() {
		t.Errorf("ForceTimeout(): fired=%d status=%s", fired, tm.Status())
	}
}

func TestRestartResetsDispatchCount(t *testing.T) {
	fired := 0
	tm := armed(t, 10*time.Millisecond, 0, &fired)
	_ = tm.Start()
	tm.Update(10 * time.Millisecond)
	if err := tm.Restart(); err != nil {
		t.Fatal(err)
	}
	if tm.DispatchCount() != 0 || !tm.IsRunning() {
		t.Errorf("after Restart: count=%d status=%s", tm.DispatchCount(), tm.Status())
	}
	tm.Update(10 * time.Millisecond)
	if fired != 2 {
		t.Errorf("fired = %d, expected 2", fired)
	}
}

func TestDispatchCountMonotonic(t *testing.T) {
	fired := 0
	tm := armed(t, 30*time.Millisecond, Forever, &fired)
	_ = tm.Start()
	last := 0
	for _, dt := range []time.Duration{5, 40, 0, 100, 7, 31} {
		tm.Update(dt * time.Millisecond)
		if tm.DispatchCount() < last {
			t.Fatalf("DispatchCount decreased from %d to %d", last, tm.DispatchCount())
		}
		last = tm.DispatchCount()
	}
}
