package sequencer

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"go-trkr/midi"
)

type recorded struct {
	at time.Time
	ev midi.Event
}

// recordingSink keeps every message with its arrival time
type recordingSink struct {
	mu     sync.Mutex
	events []recorded
}

func (r *recordingSink) NoteOn(channel, note, velocity uint8) {
	r.add(midi.Event{Type: midi.NoteOn, Channel: channel, Note: note, Velocity: velocity})
}

func (r *recordingSink) NoteOff(channel, note uint8) {
	r.add(midi.Event{Type: midi.NoteOff, Channel: channel, Note: note})
}

func (r *recordingSink) add(ev midi.Event) {
	r.mu.Lock()
	r.events = append(r.events, recorded{at: time.Now(), ev: ev})
	r.mu.Unlock()
}

func (r *recordingSink) snapshot() []recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recorded, len(r.events))
	copy(out, r.events)
	return out
}

func (r *recordingSink) count(typ uint8) int {
	n := 0
	for _, e := range r.snapshot() {
		if e.ev.Type == typ {
			n++
		}
	}
	return n
}

// fixedSource always returns v, so Intn(100) is deterministic
type fixedSource struct{ v int64 }

func (f fixedSource) Int63() int64 { return f.v }
func (f fixedSource) Seed(int64)   {}

func seededEvaluator() *Evaluator {
	return NewEvaluator(rand.NewSource(1))
}

// fillPhrase writes a note on every step of phrase id
func fillPhrase(t *testing.T, bank *Bank, id int, pitch uint8) {
	t.Helper()
	for i := 0; i < bank.Length(id); i++ {
		if err := bank.SetStep(id, i, NoteStep(pitch, 100)); err != nil {
			t.Fatalf("SetStep(%d, %d): %v", id, i, err)
		}
	}
}

func mustSet(t *testing.T, arr *Arrangement, row, channel, id int) {
	t.Helper()
	if err := arr.Set(row, channel, id); err != nil {
		t.Fatalf("Set(%d, %d, %d): %v", row, channel, id, err)
	}
}

// newTestScheduler builds a scheduler whose loop is never started; tests
// drive tick() directly
func newTestScheduler(bank *Bank, arr *Arrangement, mode Mode) *Scheduler {
	return NewScheduler(bank, arr, midi.NopSink{}, WithEvaluator(seededEvaluator()), WithMode(mode))
}

// armed puts s into a playing state at row without spawning the loop.
// done is already closed so Halt returns at once.
func armed(s *Scheduler, row int) {
	s.mu.Lock()
	s.head = newPlayhead(row)
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})
	close(s.done)
	if s.mode == ModeSong {
		s.state = PlayingSong
	} else {
		s.state = PlayingPattern
	}
	s.mu.Unlock()
}

// playBar ticks until the bar boundary and returns the number of ticks
// and whether the loop should continue
func playBar(t *testing.T, s *Scheduler) (int, bool) {
	t.Helper()
	var hits []hit
	for n := 1; n <= MaxSteps; n++ {
		var ok bool
		hits, ok = s.tick(s.stopChan, hits)
		if !ok {
			return n, false
		}
		if s.State().BarTick == 0 {
			return n, true
		}
	}
	t.Fatal("no bar boundary within 64 ticks")
	return 0, false
}
