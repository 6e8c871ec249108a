package sequencer

import "go-trkr/debug"

// Transport is what the UI drives. It makes sure a mode change always
// happens on a fully stopped (joined) clock loop, so no loop ever sees
// half of a mode switch mid-bar.
type Transport struct {
	sched *Scheduler
}

// NewTransport wraps sched
func NewTransport(sched *Scheduler) *Transport {
	return &Transport{sched: sched}
}

// Scheduler returns the wrapped scheduler
func (t *Transport) Scheduler() *Scheduler {
	return t.sched
}

// Launch is the play key. Pattern mode: start at row, or queue row for
// the next bar if already playing. Song mode: toggle play/stop.
func (t *Transport) Launch(row int) error {
	st := t.sched.State()
	if st.Mode == ModeSong && st.Running {
		t.sched.RequestStop()
		return nil
	}
	return t.sched.Start(row)
}

// Stop asks playback to stop (deferred to the bar end in pattern mode)
func (t *Transport) Stop() {
	t.sched.RequestStop()
}

// ToggleMode stops and joins the loop, then flips pattern/song
func (t *Transport) ToggleMode() Mode {
	if !t.sched.Halt() {
		debug.Warn("transport", "mode toggle: previous loop abandoned")
	}
	return t.sched.ToggleMode()
}

// Close halts playback for shutdown
func (t *Transport) Close() bool {
	return t.sched.Halt()
}
