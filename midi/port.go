package midi

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go-trkr/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver
)

// ErrPortNotFound is returned when no output port has the requested name
var ErrPortNotFound = errors.New("midi output port not found")

// allNotesOff is the channel mode controller that silences a channel
const allNotesOff = 123

// portScanTimeout guards against CoreMIDI hanging on enumeration
const portScanTimeout = 3 * time.Second

// sender is what an opened port gives us: a send func and a way to close it
type sender struct {
	send  func(gomidi.Message) error
	close func() error
}

// openFunc opens an output port by name. Swapped out in tests.
var openFunc = openPort

func openPort(name string) (*sender, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	for _, port := range outs {
		if port.String() != name {
			continue
		}
		send, err := gomidi.SendTo(port)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", name, err)
		}
		return &sender{send: send, close: port.Close}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrPortNotFound, name)
}

// outPorts lists output ports with a timeout (CoreMIDI can hang)
func outPorts() ([]drivers.Out, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		return outs, nil
	case <-time.After(portScanTimeout):
		return nil, errors.New("timed out listing MIDI ports (driver hung?)")
	}
}

// OutPorts returns the names of all MIDI output ports
func OutPorts() ([]string, error) {
	outs, err := outPorts()
	if err != nil {
		return nil, err
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

// CloseDriver releases the MIDI driver (call once on exit)
func CloseDriver() {
	gomidi.CloseDriver()
}

// PortSink sends notes to a named MIDI output port.
// The port is opened lazily on first send and reopened after SetPort.
// Send failures are logged and the port is dropped until the next
// Connect; they never reach the caller.
type PortSink struct {
	mu       sync.Mutex
	portName string
	out      *sender
	failed   bool // last open attempt failed, don't retry on every note
}

// NewPortSink creates a sink for portName (may be empty: silent until SetPort)
func NewPortSink(portName string) *PortSink {
	return &PortSink{portName: portName}
}

// PortName returns the configured port name
func (p *PortSink) PortName() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.portName
}

// Connected reports whether the port is currently open
func (p *PortSink) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.out != nil
}

// SetPort switches to another output port, closing the current one.
// On failure the previous name is kept but the sink is disconnected.
func (p *PortSink) SetPort(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closeLocked()
	p.portName = name
	p.failed = false
	if name == "" {
		return nil
	}
	return p.openLocked()
}

// Connect (re)opens the configured port if it's not open
func (p *PortSink) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.out != nil || p.portName == "" {
		return nil
	}
	p.failed = false
	return p.openLocked()
}

// Disconnect closes the port without forgetting its name
func (p *PortSink) Disconnect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

// Close closes the port
func (p *PortSink) Close() error {
	p.Disconnect()
	return nil
}

func (p *PortSink) openLocked() error {
	s, err := openFunc(p.portName)
	if err != nil {
		p.failed = true
		debug.Warn("port", "open %q failed: %v", p.portName, err)
		return err
	}
	p.out = s
	debug.Log("port", "opened %q", p.portName)
	return nil
}

func (p *PortSink) closeLocked() {
	if p.out == nil {
		return
	}
	// Notes sounding on this port won't get their note-offs here anymore
	for ch := uint8(0); ch < 16; ch++ {
		if err := p.out.send(gomidi.ControlChange(ch, allNotesOff, 0)); err != nil {
			break
		}
	}
	if p.out.close != nil {
		if err := p.out.close(); err != nil {
			debug.Log("port", "close %q: %v", p.portName, err)
		}
	}
	p.out = nil
}

func (p *PortSink) sendMsg(msg gomidi.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.out == nil {
		if p.portName == "" || p.failed {
			return
		}
		if err := p.openLocked(); err != nil {
			return
		}
	}

	if err := p.out.send(msg); err != nil {
		debug.Warn("port", "send to %q failed, dropping port: %v", p.portName, err)
		p.closeLocked()
		p.failed = true
	}
}

// NoteOn implements Sink
func (p *PortSink) NoteOn(channel, note, velocity uint8) {
	p.sendMsg(gomidi.NoteOn(channel, note, velocity))
}

// NoteOff implements Sink
func (p *PortSink) NoteOff(channel, note uint8) {
	p.sendMsg(gomidi.NoteOff(channel, note))
}
