package midi

import (
	"go-trkr/debug"
)

// Sink receives note messages from the sequencer.
// Calls are fire-and-forget: implementations swallow delivery errors so
// playback never stops because an output went away.
type Sink interface {
	NoteOn(channel, note, velocity uint8)
	NoteOff(channel, note uint8)
}

// NopSink drops everything
type NopSink struct{}

func (NopSink) NoteOn(channel, note, velocity uint8) {}
func (NopSink) NoteOff(channel, note uint8)          {}

// LogSink writes every message to the debug log (dry runs)
type LogSink struct{}

func (LogSink) NoteOn(channel, note, velocity uint8) {
	debug.Log("sink", "%s", Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity})
}

func (LogSink) NoteOff(channel, note uint8) {
	debug.Log("sink", "%s", Event{Type: NoteOff, Channel: channel, Note: note})
}

// FuncSink adapts a callback to the Sink interface
type FuncSink func(Event)

func (f FuncSink) NoteOn(channel, note, velocity uint8) {
	f(Event{Type: NoteOn, Channel: channel, Note: note, Velocity: velocity})
}

func (f FuncSink) NoteOff(channel, note uint8) {
	f(Event{Type: NoteOff, Channel: channel, Note: note})
}

// Tee fans messages out to several sinks
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) NoteOn(channel, note, velocity uint8) {
	for _, s := range t {
		s.NoteOn(channel, note, velocity)
	}
}

func (t teeSink) NoteOff(channel, note uint8) {
	for _, s := range t {
		s.NoteOff(channel, note)
	}
}
