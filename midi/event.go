package midi

import "fmt"

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
)

// Event is a note message as it leaves the sequencer
type Event struct {
	Type     uint8 // NoteOn, NoteOff
	Channel  uint8 // 0-15
	Note     uint8
	Velocity uint8
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("on  ch=%d note=%d vel=%d", e.Channel+1, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("off ch=%d note=%d", e.Channel+1, e.Note)
	}
	return fmt.Sprintf("type=%#x ch=%d note=%d", e.Type, e.Channel+1, e.Note)
}

var noteNames = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}

// NoteName formats a MIDI note number with flats, 60 -> "C4"
func NoteName(n uint8) string {
	if n > 127 {
		return "--"
	}
	return fmt.Sprintf("%s%d", noteNames[n%12], int(n)/12-1)
}
