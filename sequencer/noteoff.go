package sequencer

import (
	"container/heap"
	"time"

	"go-trkr/midi"
)

type pendingOff struct {
	at      time.Time
	channel uint8
	note    uint8
}

// offQueue is a min-heap of note-offs ordered by due time
type offQueue []pendingOff

func (q offQueue) Len() int           { return len(q) }
func (q offQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q offQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *offQueue) Push(x any)        { *q = append(*q, x.(pendingOff)) }
func (q *offQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

func (q *offQueue) schedule(at time.Time, channel, note uint8) {
	heap.Push(q, pendingOff{at: at, channel: channel, note: note})
}

// next returns the earliest due time
func (q offQueue) next() (time.Time, bool) {
	if len(q) == 0 {
		return time.Time{}, false
	}
	return q[0].at, true
}

// flush sends every note-off due at or before now
func (q *offQueue) flush(now time.Time, sink midi.Sink) {
	for len(*q) > 0 && !(*q)[0].at.After(now) {
		off := heap.Pop(q).(pendingOff)
		sink.NoteOff(off.channel, off.note)
	}
}

// drain sends the remaining note-offs, each at its due time
func (q *offQueue) drain(sink midi.Sink) {
	for len(*q) > 0 {
		off := heap.Pop(q).(pendingOff)
		if wait := time.Until(off.at); wait > 0 {
			time.Sleep(wait)
		}
		sink.NoteOff(off.channel, off.note)
	}
}
