package clock

import (
	"fmt"
	"math"
	"sync"
	"time"

	"stepclock/debug"
)

// Tempo and time-signature bounds
const (
	MinBPM = 40
	MaxBPM = 600

	MinBeatsPerMeasure = 1
	MaxBeatsPerMeasure = 24

	MaxBeatLength = 16
)

// StepsPerWholeNote fixes the tick granularity: one step is a sixteenth note.
const StepsPerWholeNote = 16

// minElapsedMs floors the measured elapsed time before the drift division.
// Two coincident ticks (or a clock coarser than the interval) would otherwise
// divide by zero; flooring at 1ms keeps the ratio finite while still pulling
// hard toward the nominal cadence.
const minElapsedMs = 1.0

// TimeSignature is the measure grouping as a fraction of a whole note.
type TimeSignature struct {
	BeatsPerMeasure int
	BeatLength      int
}

// String renders the conventional "4/4" form.
func (ts TimeSignature) String() string {
	return fmt.Sprintf("%d/%d", ts.BeatsPerMeasure, ts.BeatLength)
}

// Scheduler fires a callback once per step (sixteenth note) at the current
// tempo, re-arming a single host timer each tick and scaling the next delay
// by the drift measured on the previous one.
type Scheduler struct {
	mu  sync.Mutex
	clk Clock

	bpm             float64
	beatsPerMeasure int
	beatLength      int

	intervalMs float64 // derived from bpm + beatLength, never set directly
	driftRatio float64 // correction applied to the next armed delay
	lastTick   time.Time

	playing bool
	pending Timer // the one outstanding timer, non-nil iff playing

	onStep func()
}

// New creates a scheduler at 120 BPM in 4/4. A nil clk falls back to the
// system clock; a nil onStep installs a no-op until SetStepCallback replaces
// it. Construct one at startup and share the handle — the scheduler itself
// enforces no singleton.
func New(clk Clock, onStep func()) *Scheduler {
	if clk == nil {
		clk = SystemClock{}
	}
	if onStep == nil {
		onStep = func() {}
	}
	s := &Scheduler{
		clk:             clk,
		bpm:             120,
		beatsPerMeasure: 4,
		beatLength:      4,
		onStep:          onStep,
	}
	s.recomputeInterval()
	return s
}

// recomputeInterval derives the step interval from bpm and beatLength.
// A new interval has no drift history, so the ratio resets with it.
// Callers hold s.mu.
func (s *Scheduler) recomputeInterval() {
	s.intervalMs = (60000 / s.bpm) / (StepsPerWholeNote / float64(s.beatLength))
	s.driftRatio = 1
}

// SetTempo clamps bpm to [40, 600] and re-derives the step interval. Takes
// effect when the next tick arms its timer; the already-pending tick is left
// alone.
func (s *Scheduler) SetTempo(bpm float64) error {
	if math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		return fmt.Errorf("tempo %v: %w", bpm, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.bpm = clampFloat(bpm, MinBPM, MaxBPM)
	s.recomputeInterval()
	debug.Log("clock", "tempo=%g interval=%.3fms", s.bpm, s.intervalMs)
	return nil
}

// SetTimeSignature rounds and clamps both components, then snaps beatLength
// to the nearest divisor of 16 so a beat always spans a whole number of
// steps. An unrepresentable beat length (say 5) is substituted transparently
// rather than rejected.
func (s *Scheduler) SetTimeSignature(beatsPerMeasure, beatLength float64) error {
	if math.IsNaN(beatsPerMeasure) || math.IsInf(beatsPerMeasure, 0) ||
		math.IsNaN(beatLength) || math.IsInf(beatLength, 0) {
		return fmt.Errorf("time signature %v/%v: %w", beatsPerMeasure, beatLength, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.beatsPerMeasure = clampInt(int(math.Round(beatsPerMeasure)), MinBeatsPerMeasure, MaxBeatsPerMeasure)
	length := clampInt(int(math.Round(beatLength)), 1, MaxBeatLength)
	s.beatLength = nearestDivisor(StepsPerWholeNote, length)
	s.recomputeInterval()
	debug.Log("clock", "signature=%d/%d interval=%.3fms", s.beatsPerMeasure, s.beatLength, s.intervalMs)
	return nil
}

// SetStepCallback replaces the per-step callback. Nil installs a no-op.
func (s *Scheduler) SetStepCallback(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	s.mu.Lock()
	s.onStep = fn
	s.mu.Unlock()
}

// Play starts the tick loop. Already playing is a no-op, so at most one loop
// runs regardless of repeated calls.
func (s *Scheduler) Play() {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = true
	// Seed lastTick one interval back so the first tick measures exactly one
	// nominal interval and corrects nothing.
	s.lastTick = s.clk.Now().Add(-durationMs(s.intervalMs))
	s.mu.Unlock()

	debug.Log("clock", "play")
	s.tick()
}

// Stop halts the loop and releases the pending timer. Already stopped is a
// no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = false
	if s.pending != nil {
		s.pending.Stop()
		s.pending = nil
	}
	s.mu.Unlock()

	debug.Log("clock", "stop")
}

// Toggle flips between playing and stopped.
func (s *Scheduler) Toggle() {
	if s.Playing() {
		s.Stop()
	} else {
		s.Play()
	}
}

// tick runs once per scheduled firing. The next timer is armed before the
// drift math so the cadence never waits on it; the delay uses the ratio
// measured on the previous tick, so a late tick shortens the one after next.
func (s *Scheduler) tick() {
	s.mu.Lock()
	if !s.playing {
		s.mu.Unlock()
		return
	}

	s.pending = s.clk.AfterFunc(durationMs(s.intervalMs*s.driftRatio), s.tick)

	elapsed := float64(s.clk.Now().Sub(s.lastTick)) / float64(time.Millisecond)
	if elapsed < minElapsedMs {
		elapsed = minElapsedMs
	}
	s.driftRatio = s.intervalMs / elapsed
	s.lastTick = s.clk.Now()
	fn := s.onStep
	s.mu.Unlock()

	debug.LogEvery(64, "tick", "elapsed=%.3fms ratio=%.4f", elapsed, s.driftRatio)

	// Outside the lock: the callback may call back into the scheduler, and
	// panics propagate to the host uncaught.
	fn()
}

// BPM returns the current tempo.
func (s *Scheduler) BPM() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bpm
}

// TimeSignature returns the current time signature.
func (s *Scheduler) TimeSignature() TimeSignature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TimeSignature{BeatsPerMeasure: s.beatsPerMeasure, BeatLength: s.beatLength}
}

// Playing reports whether the loop is active.
func (s *Scheduler) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// StepInterval returns the nominal time between steps.
func (s *Scheduler) StepInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return durationMs(s.intervalMs)
}

func durationMs(ms float64) time.Duration {
	return time.Duration(ms * float64(time.Millisecond))
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
