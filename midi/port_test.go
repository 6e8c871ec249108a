package midi

import (
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

type fakePort struct {
	sent        []gomidi.Message
	fail        bool
	closed      int
	opened      int
	missing     bool
	sentAtClose int // len(sent) when close was last called
}

func (f *fakePort) install(t *testing.T) {
	t.Helper()
	prev := openFunc
	openFunc = func(name string) (*sender, error) {
		if f.missing {
			return nil, ErrPortNotFound
		}
		f.opened++
		return &sender{
			send: func(msg gomidi.Message) error {
				if f.fail {
					return errors.New("device unplugged")
				}
				f.sent = append(f.sent, msg)
				return nil
			},
			close: func() error {
				f.sentAtClose = len(f.sent)
				f.closed++
				return nil
			},
		}, nil
	}
	t.Cleanup(func() { openFunc = prev })
}

func TestPortSinkOpensLazily(t *testing.T) {
	fp := &fakePort{}
	fp.install(t)

	s := NewPortSink("Synth")
	if s.Connected() {
		t.Fatal("should not connect before first send")
	}

	s.NoteOn(0, 60, 100)
	s.NoteOff(0, 60)

	if fp.opened != 1 {
		t.Errorf("opened = %d, want 1", fp.opened)
	}
	if len(fp.sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(fp.sent))
	}

	var ch, key, vel uint8
	if !fp.sent[0].GetNoteOn(&ch, &key, &vel) || key != 60 || vel != 100 {
		t.Errorf("first message = %v, want note on 60/100", fp.sent[0])
	}
	if !fp.sent[1].GetNoteOff(&ch, &key, &vel) || key != 60 {
		t.Errorf("second message = %v, want note off 60", fp.sent[1])
	}
}

func TestPortSinkSwallowsSendErrors(t *testing.T) {
	fp := &fakePort{fail: true}
	fp.install(t)

	s := NewPortSink("Synth")
	s.NoteOn(0, 60, 100) // must not panic or block
	if s.Connected() {
		t.Error("failed send should drop the port")
	}

	// Further notes are dropped until Connect is called again
	s.NoteOn(0, 62, 100)
	if fp.opened != 1 {
		t.Errorf("opened = %d, want 1 (no retry per note)", fp.opened)
	}

	fp.fail = false
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	s.NoteOn(0, 64, 100)
	if len(fp.sent) != 1 {
		t.Errorf("sent = %d, want 1 after reconnect", len(fp.sent))
	}
}

func TestPortSinkMissingPort(t *testing.T) {
	fp := &fakePort{missing: true}
	fp.install(t)

	s := NewPortSink("")
	if err := s.SetPort("Nowhere"); !errors.Is(err, ErrPortNotFound) {
		t.Fatalf("SetPort err = %v, want ErrPortNotFound", err)
	}
	s.NoteOn(0, 60, 100) // silently dropped
	if s.PortName() != "Nowhere" {
		t.Errorf("PortName = %q", s.PortName())
	}
}

func TestPortSinkSetPortClosesPrevious(t *testing.T) {
	fp := &fakePort{}
	fp.install(t)

	s := NewPortSink("A")
	s.NoteOn(0, 60, 100)
	if err := s.SetPort("B"); err != nil {
		t.Fatalf("SetPort: %v", err)
	}
	if fp.closed != 1 {
		t.Errorf("closed = %d, want 1", fp.closed)
	}
	if !s.Connected() || s.PortName() != "B" {
		t.Errorf("expected connected to B")
	}
}

func TestPortSinkSilencesOldPortBeforeClose(t *testing.T) {
	fp := &fakePort{}
	fp.install(t)

	s := NewPortSink("A")
	s.NoteOn(3, 60, 100)
	if err := s.SetPort("B"); err != nil {
		t.Fatalf("SetPort: %v", err)
	}

	if len(fp.sent) != 17 {
		t.Fatalf("sent %d messages, want the note on plus 16 all-notes-off", len(fp.sent))
	}
	if fp.sentAtClose != 17 {
		t.Errorf("port closed after %d messages, want all 17 sent first", fp.sentAtClose)
	}
	for i, msg := range fp.sent[1:] {
		var ch, cc, val uint8
		if !msg.GetControlChange(&ch, &cc, &val) || ch != uint8(i) || cc != allNotesOff || val != 0 {
			t.Errorf("message %d = %v, want CC 123 on channel %d", i+1, msg, i)
		}
	}

	// Nothing is sent when the port was never opened
	idle := NewPortSink("C")
	idle.Disconnect()
	if len(fp.sent) != 17 {
		t.Errorf("idle disconnect sent %d extra messages", len(fp.sent)-17)
	}
}

func TestNoteName(t *testing.T) {
	tests := []struct {
		in   uint8
		want string
	}{
		{60, "C4"},
		{61, "Db4"},
		{0, "C-1"},
		{127, "G9"},
		{69, "A4"},
	}
	for _, tt := range tests {
		if got := NoteName(tt.in); got != tt.want {
			t.Errorf("NoteName(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
