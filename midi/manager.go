package midi

import (
	"context"
	"sort"
	"sync"
	"time"

	"go-trkr/debug"
)

// PortEvent is emitted when output ports appear or disappear
type PortEvent struct {
	Type PortEventType
	Name string
}

type PortEventType int

const (
	PortAdded PortEventType = iota
	PortRemoved
)

// PortWatcher handles hot-plug detection of MIDI output ports and keeps
// a PortSink connected to its configured port while that port exists.
type PortWatcher struct {
	sink     *PortSink
	list     func() ([]string, error)
	mu       sync.RWMutex
	ports    map[string]bool
	events   chan PortEvent
	pollRate time.Duration
}

// NewPortWatcher creates a watcher for sink (sink may be nil)
func NewPortWatcher(sink *PortSink) *PortWatcher {
	return &PortWatcher{
		sink:     sink,
		list:     OutPorts,
		ports:    make(map[string]bool),
		events:   make(chan PortEvent, 16),
		pollRate: time.Second,
	}
}

// Events returns a channel of port added/removed events
func (w *PortWatcher) Events() <-chan PortEvent {
	return w.events
}

// Ports returns a sorted snapshot of the known output ports
func (w *PortWatcher) Ports() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	names := make([]string, 0, len(w.ports))
	for name := range w.ports {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run starts the polling loop (blocking - run in goroutine)
func (w *PortWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.pollRate)
	defer ticker.Stop()

	// Initial scan
	w.scan()

	for {
		select {
		case <-ctx.Done():
			close(w.events)
			return
		case <-ticker.C:
			w.scan()
		}
	}
}

func (w *PortWatcher) scan() {
	names, err := w.list()
	if err != nil {
		// Driver hung - skip this scan
		debug.LogEvery(10, "port", "scan failed: %v", err)
		return
	}

	seen := make(map[string]bool, len(names))
	var added, removed []string

	w.mu.Lock()
	for _, name := range names {
		seen[name] = true
		if !w.ports[name] {
			added = append(added, name)
		}
	}
	for name := range w.ports {
		if !seen[name] {
			removed = append(removed, name)
		}
	}
	w.ports = seen
	w.mu.Unlock()

	sort.Strings(added)
	sort.Strings(removed)
	for _, name := range added {
		w.emit(PortEvent{Type: PortAdded, Name: name})
	}
	for _, name := range removed {
		w.emit(PortEvent{Type: PortRemoved, Name: name})
	}

	w.syncSink(seen)
}

// syncSink drops the sink's port when it vanished and reopens it when it's back
func (w *PortWatcher) syncSink(present map[string]bool) {
	if w.sink == nil {
		return
	}
	name := w.sink.PortName()
	if name == "" {
		return
	}
	switch {
	case !present[name] && w.sink.Connected():
		debug.Log("port", "%q disappeared, disconnecting", name)
		w.sink.Disconnect()
	case present[name] && !w.sink.Connected():
		if err := w.sink.Connect(); err == nil {
			debug.Log("port", "%q reconnected", name)
		}
	}
}

func (w *PortWatcher) emit(e PortEvent) {
	select {
	case w.events <- e:
	default:
		// Nobody listening - the snapshot in Ports() is still current
	}
}
