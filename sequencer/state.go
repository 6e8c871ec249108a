package sequencer

import (
	"fmt"
	"time"
)

// NoRow means no row change is queued
const NoRow = -1

const (
	MinTempo     = 40
	MaxTempo     = 300
	DefaultTempo = 120
)

// State is the scheduler's playback state
type State int

const (
	Stopped         State = iota
	PlayingPattern        // looping activeRow
	PlayingSong           // advancing through rows
	StoppingPattern       // pattern mode, stop at the next bar boundary
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "STOP"
	case PlayingPattern:
		return "PLAY"
	case PlayingSong:
		return "SONG"
	case StoppingPattern:
		return "STOPPING"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Mode picks pattern looping or song playback
type Mode int

const (
	ModePattern Mode = iota
	ModeSong
)

func (m Mode) String() string {
	if m == ModeSong {
		return "song"
	}
	return "pattern"
}

// Other returns the opposite mode
func (m Mode) Other() Mode {
	if m == ModeSong {
		return ModePattern
	}
	return ModeSong
}

// ParseMode parses "pattern" or "song"
func ParseMode(s string) (Mode, error) {
	switch s {
	case "pattern", "":
		return ModePattern, nil
	case "song":
		return ModeSong, nil
	}
	return ModePattern, fmt.Errorf("unknown mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	parsed, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// PlaybackState is a snapshot of the scheduler for the UI and persistence
type PlaybackState struct {
	State       State
	Mode        Mode
	Tempo       int
	ActiveRow   int
	Cursors     [NumChannels]int // next step to play per channel
	Played      [NumChannels]int // last step played per channel, -1 if none
	BarTick     int
	PendingRow  int // NoRow if none
	PendingStop bool
	Running     bool
}

// StepInterval returns the length of a sixteenth note at bpm
func StepInterval(bpm int) time.Duration {
	return time.Minute / time.Duration(bpm*4)
}

func clampTempo(bpm int) int {
	if bpm < MinTempo {
		bpm = MinTempo
	}
	if bpm > MaxTempo {
		bpm = MaxTempo
	}
	return bpm
}
