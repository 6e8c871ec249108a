package midi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteEvent is sent when a note is played on a keyboard
type NoteEvent struct {
	Note     uint8
	Velocity uint8
	Channel  uint8
}

// listenFunc opens an input port by name and feeds it to recv.
// Swapped out in tests.
var listenFunc = listenPort

func listenPort(name string, recv func(gomidi.Message)) (func(), error) {
	ins, err := inPorts()
	if err != nil {
		return nil, err
	}
	for _, port := range ins {
		if port.String() != name {
			continue
		}
		stop, err := gomidi.ListenTo(port, func(msg gomidi.Message, timestampms int32) {
			recv(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input %q: %w", name, err)
		}
		return stop, nil
	}
	return nil, fmt.Errorf("%w: input %q", ErrPortNotFound, name)
}

func inPorts() ([]drivers.In, error) {
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	select {
	case ins := <-ch:
		return ins, nil
	case <-time.After(portScanTimeout):
		return nil, errors.New("timed out listing MIDI ports (driver hung?)")
	}
}

// InPorts returns the names of all MIDI input ports
func InPorts() ([]string, error) {
	ins, err := inPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(ins))
	for i, p := range ins {
		names[i] = p.String()
	}
	return names, nil
}

// NoteInput listens to a keyboard on an input port for step entry
type NoteInput struct {
	name  string
	stop  func()
	notes chan NoteEvent
	once  sync.Once
}

// OpenNoteInput starts listening on the named input port
func OpenNoteInput(name string) (*NoteInput, error) {
	in := &NoteInput{
		name:  name,
		notes: make(chan NoteEvent, 32),
	}
	stop, err := listenFunc(name, in.handle)
	if err != nil {
		return nil, err
	}
	in.stop = stop
	return in, nil
}

// handle forwards note-ons; anything else, or a full buffer, is dropped
func (in *NoteInput) handle(msg gomidi.Message) {
	var channel, note, velocity uint8
	if msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0 {
		select {
		case in.notes <- NoteEvent{Note: note, Velocity: velocity, Channel: channel}:
		default:
		}
	}
}

// Name returns the input port name
func (in *NoteInput) Name() string {
	return in.name
}

// Notes delivers played notes; closed by Close
func (in *NoteInput) Notes() <-chan NoteEvent {
	return in.notes
}

// Close stops listening
func (in *NoteInput) Close() error {
	in.once.Do(func() {
		if in.stop != nil {
			in.stop()
		}
		close(in.notes)
	})
	return nil
}
