package sequencer

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"go-trkr/debug"
	"go-trkr/midi"
)

const (
	defaultNoteLength  = 50 * time.Millisecond
	defaultStopTimeout = time.Second
)

// Scheduler runs the clock loop: every sixteenth it plays one step on
// each channel of the active row and resolves row changes, song advance
// and deferred stops at bar boundaries.
type Scheduler struct {
	bank *Bank
	arr  *Arrangement
	sink midi.Sink
	eval *Evaluator

	noteLength  time.Duration
	stopTimeout time.Duration
	tempo       atomic.Int32

	mu         sync.Mutex // guards everything below
	state      State
	mode       Mode
	head       playhead
	pendingRow int
	stopChan   chan struct{}
	done       chan struct{} // closed when the current loop has exited

	// Notify UI of step/transport changes
	updates chan struct{}
}

// Option configures a Scheduler
type Option func(*Scheduler)

// WithNoteLength sets how long after a note-on its note-off is sent
func WithNoteLength(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.noteLength = d
		}
	}
}

// WithStopTimeout bounds how long an immediate stop waits for the loop
func WithStopTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.stopTimeout = d
		}
	}
}

// WithEvaluator replaces the trigger evaluator (tests seed it)
func WithEvaluator(e *Evaluator) Option {
	return func(s *Scheduler) {
		if e != nil {
			s.eval = e
		}
	}
}

// WithTempo sets the initial tempo
func WithTempo(bpm int) Option {
	return func(s *Scheduler) {
		s.tempo.Store(int32(clampTempo(bpm)))
	}
}

// WithMode sets the initial mode
func WithMode(m Mode) Option {
	return func(s *Scheduler) {
		s.mode = m
	}
}

// NewScheduler creates a stopped scheduler reading bank and arr and
// sending to sink (nil sink drops notes)
func NewScheduler(bank *Bank, arr *Arrangement, sink midi.Sink, opts ...Option) *Scheduler {
	if sink == nil {
		sink = midi.NopSink{}
	}
	s := &Scheduler{
		bank:        bank,
		arr:         arr,
		sink:        sink,
		eval:        NewEvaluator(nil),
		noteLength:  defaultNoteLength,
		stopTimeout: defaultStopTimeout,
		pendingRow:  NoRow,
		head:        newPlayhead(0),
		updates:     make(chan struct{}, 1),
	}
	s.tempo.Store(DefaultTempo)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluator returns the trigger evaluator (project loading resets it)
func (s *Scheduler) Evaluator() *Evaluator {
	return s.eval
}

// Updates fires (coalesced) after every step and transport change
func (s *Scheduler) Updates() <-chan struct{} {
	return s.updates
}

func (s *Scheduler) notify() {
	select {
	case s.updates <- struct{}{}:
	default:
	}
}

// SetTempo sets the BPM, clamped to [MinTempo, MaxTempo]. The loop picks
// it up when it computes the next step deadline.
func (s *Scheduler) SetTempo(bpm int) {
	s.tempo.Store(int32(clampTempo(bpm)))
	s.notify()
}

// Tempo returns the BPM
func (s *Scheduler) Tempo() int {
	return int(s.tempo.Load())
}

// Mode returns the current mode
func (s *Scheduler) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode changes mode; only allowed while stopped
func (s *Scheduler) SetMode(m Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Stopped {
		return ErrPlaying
	}
	s.mode = m
	s.pendingRow = NoRow
	return nil
}

// State returns a snapshot of the playback state
func (s *Scheduler) State() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PlaybackState{
		State:       s.state,
		Mode:        s.mode,
		Tempo:       s.Tempo(),
		ActiveRow:   s.head.row,
		Cursors:     s.head.cursors,
		Played:      s.head.played,
		BarTick:     s.head.barTick,
		PendingRow:  s.pendingRow,
		PendingStop: s.state == StoppingPattern,
		Running:     s.state != Stopped,
	}
}

// Start begins playback at row. While already playing it only queues
// row for the next bar boundary, so the current bar finishes cleanly.
func (s *Scheduler) Start(row int) error {
	if row < 0 || row >= NumRows {
		return fmt.Errorf("row %d: %w", row, ErrOutOfRange)
	}

	s.mu.Lock()
	if s.state != Stopped {
		s.pendingRow = row
		s.mu.Unlock()
		debug.Log("sched", "queued row %d", row)
		s.notify()
		return nil
	}

	s.head = newPlayhead(row)
	s.pendingRow = NoRow
	if s.mode == ModeSong {
		s.state = PlayingSong
	} else {
		s.state = PlayingPattern
	}
	stop := make(chan struct{})
	done := make(chan struct{})
	s.stopChan = stop
	s.done = done
	s.mu.Unlock()

	debug.Log("sched", "start row=%d mode=%s tempo=%d", row, s.Mode(), s.Tempo())
	go s.run(stop, done)
	s.notify()
	return nil
}

// RequestStop stops playback: at the end of the current bar in pattern
// mode, immediately in song mode
func (s *Scheduler) RequestStop() {
	s.mu.Lock()
	switch s.state {
	case PlayingPattern:
		s.state = StoppingPattern
		s.mu.Unlock()
		debug.Log("sched", "stop requested, finishing bar")
		s.notify()
		return
	case PlayingSong:
		s.mu.Unlock()
		s.Halt()
		return
	}
	s.mu.Unlock()
}

// Halt stops playback now and waits for the clock loop to exit, at most
// the stop timeout. It returns false if the loop didn't exit in time;
// the loop is then abandoned.
func (s *Scheduler) Halt() bool {
	s.mu.Lock()
	if s.state != Stopped {
		s.state = Stopped
		s.pendingRow = NoRow
		close(s.stopChan)
	}
	done := s.done
	s.mu.Unlock()
	s.notify()

	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(s.stopTimeout):
		debug.Warn("sched", "clock loop did not exit within %v", s.stopTimeout)
		return false
	}
}

// ToggleMode halts playback (joined), flips the mode and clears anything
// pending. It never restarts playback.
func (s *Scheduler) ToggleMode() Mode {
	s.Halt()

	s.mu.Lock()
	s.mode = s.mode.Other()
	s.state = Stopped
	s.pendingRow = NoRow
	m := s.mode
	s.mu.Unlock()

	debug.Log("sched", "mode -> %s", m)
	s.notify()
	return m
}

// run is the clock loop. It sleeps until the earlier of the next step
// deadline and the next due note-off.
func (s *Scheduler) run(stop <-chan struct{}, done chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	var offs offQueue
	defer func() {
		// Emitted notes always get their note-off
		offs.drain(s.sink)
		close(done)
	}()

	var hits []hit
	next := time.Now()
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		wake := next
		if at, ok := offs.next(); ok && at.Before(wake) {
			wake = at
		}
		timer.Reset(time.Until(wake))

		select {
		case <-stop:
			return
		case <-timer.C:
		}

		now := time.Now()
		offs.flush(now, s.sink)
		if now.Before(next) {
			continue
		}

		var keepGoing bool
		hits, keepGoing = s.tick(stop, hits)
		for _, h := range hits {
			ch, note := uint8(h.channel), h.step.Pitch
			s.sink.NoteOn(ch, note, h.step.Velocity)
			offs.schedule(now.Add(s.noteLength), ch, note)
		}
		s.notify()
		if !keepGoing {
			return
		}

		next = next.Add(StepInterval(s.Tempo()))
		if next.Before(now) {
			// Fell behind (machine asleep?), don't burst to catch up
			next = now
		}
	}
}

// tick plays one step under the lock and resolves the bar boundary.
// It returns false when the loop should exit. stop identifies the calling
// loop; a loop abandoned by Halt must not touch a newer run's playhead.
func (s *Scheduler) tick(stop <-chan struct{}, buf []hit) ([]hit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Stopped || s.stopChan != stop {
		return buf[:0], false
	}

	hits, boundary := s.head.advance(s.bank, s.arr, s.eval, buf)
	if !boundary {
		return hits, true
	}

	switch {
	case s.state == StoppingPattern:
		s.state = Stopped
		debug.Log("sched", "stopped at bar boundary, row=%d", s.head.row)
		return hits, false
	case s.pendingRow != NoRow:
		s.head.row = s.pendingRow
		s.pendingRow = NoRow
		debug.Log("sched", "bar: switched to row %d", s.head.row)
	case s.mode == ModeSong:
		s.head.row = s.arr.NextSongRow(s.head.row)
		debug.Log("sched", "bar: song advanced to row %d", s.head.row)
	}
	return hits, true
}
