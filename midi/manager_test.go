package midi

import (
	"reflect"
	"testing"
)

func TestPortWatcherScanEmitsEvents(t *testing.T) {
	fp := &fakePort{}
	fp.install(t)

	ports := []string{"B", "A"}
	w := NewPortWatcher(nil)
	w.list = func() ([]string, error) { return ports, nil }

	w.scan()
	if got := w.Ports(); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("Ports = %v", got)
	}
	for _, want := range []string{"A", "B"} {
		e := <-w.Events()
		if e.Type != PortAdded || e.Name != want {
			t.Errorf("event = %+v, want added %s", e, want)
		}
	}

	ports = []string{"A"}
	w.scan()
	e := <-w.Events()
	if e.Type != PortRemoved || e.Name != "B" {
		t.Errorf("event = %+v, want removed B", e)
	}
}

func TestPortWatcherReconnectsSink(t *testing.T) {
	fp := &fakePort{}
	fp.install(t)

	sink := NewPortSink("Synth")
	ports := []string{"Synth"}
	w := NewPortWatcher(sink)
	w.list = func() ([]string, error) { return ports, nil }

	w.scan()
	if !sink.Connected() {
		t.Fatal("sink should connect when its port is present")
	}

	ports = nil
	w.scan()
	if sink.Connected() {
		t.Fatal("sink should disconnect when its port vanishes")
	}

	ports = []string{"Synth"}
	w.scan()
	if !sink.Connected() {
		t.Fatal("sink should reconnect when its port returns")
	}
}
