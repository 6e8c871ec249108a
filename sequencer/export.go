package sequencer

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-trkr/debug"
)

const (
	ticksPerQuarter = 960
	ticksPerStep    = ticksPerQuarter / 4
	maxExportBars   = NumRows
)

// ExportOptions controls a song render
type ExportOptions struct {
	StartRow   int
	Mode       Mode
	Bars       int   // pattern: repetitions (default 1); song: cap (default 64)
	Seed       int64 // probability/condition rolls
	Tempo      int
	NoteLength time.Duration
}

type exportEvent struct {
	tick uint32
	msg  midi.Message
}

// Export renders the arrangement from opts.StartRow to a format 1 SMF,
// stepping it the same way live playback does
func Export(w io.Writer, bank *Bank, arr *Arrangement, opts ExportOptions) error {
	if opts.StartRow < 0 || opts.StartRow >= NumRows {
		return fmt.Errorf("start row %d: %w", opts.StartRow, ErrOutOfRange)
	}
	tempo := clampTempo(opts.Tempo)
	if opts.Tempo == 0 {
		tempo = DefaultTempo
	}
	noteLength := opts.NoteLength
	if noteLength <= 0 {
		noteLength = defaultNoteLength
	}
	bars := opts.Bars
	if bars <= 0 {
		bars = 1
		if opts.Mode == ModeSong {
			bars = maxExportBars
		}
	}
	if bars > maxExportBars {
		bars = maxExportBars
	}

	offTicks := noteOffTicks(noteLength, tempo)
	eval := NewEvaluator(rand.NewSource(opts.Seed))
	head := newPlayhead(opts.StartRow)

	var events [NumChannels][]exportEvent
	var hits []hit
	var tick uint32

	for bar := 0; bar < bars; bar++ {
		for {
			var boundary bool
			hits, boundary = head.advance(bank, arr, eval, hits)
			for _, h := range hits {
				ch := uint8(h.channel)
				events[h.channel] = append(events[h.channel],
					exportEvent{tick, midi.NoteOn(ch, h.step.Pitch, h.step.Velocity)},
					exportEvent{tick + offTicks, midi.NoteOff(ch, h.step.Pitch)},
				)
			}
			tick += ticksPerStep
			if boundary {
				break
			}
		}

		if opts.Mode == ModeSong {
			next := arr.NextSongRow(head.row)
			if next == opts.StartRow {
				break
			}
			head.row = next
		}
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaMeter(4, 4))
	conductor.Add(0, smf.MetaTempo(float64(tempo)))
	conductor.Close(tick)
	if err := s.Add(conductor); err != nil {
		return fmt.Errorf("add tempo track: %w", err)
	}

	for ch := range events {
		if len(events[ch]) == 0 {
			continue
		}
		var track smf.Track
		track.Add(0, smf.MetaTrackSequenceName(fmt.Sprintf("ch %d", ch+1)))
		var last uint32
		for _, ev := range events[ch] {
			track.Add(ev.tick-last, ev.msg)
			last = ev.tick
		}
		track.Close(tick - last)
		if err := s.Add(track); err != nil {
			return fmt.Errorf("add channel %d track: %w", ch+1, err)
		}
	}

	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("write smf: %w", err)
	}
	debug.Log("export", "rendered %d ticks at %d bpm from row %d", tick, tempo, opts.StartRow)
	return nil
}

// ExportFile renders to path
func ExportFile(path string, bank *Bank, arr *Arrangement, opts ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Export(f, bank, arr, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// noteOffTicks converts a wall clock note length to ticks at bpm. It stays
// inside one step so a channel's note-off always precedes its next note-on.
func noteOffTicks(d time.Duration, bpm int) uint32 {
	ticks := int64(d) * ticksPerQuarter * int64(bpm) / int64(time.Minute)
	if ticks < 1 {
		ticks = 1
	}
	if ticks > ticksPerStep-1 {
		ticks = ticksPerStep - 1
	}
	return uint32(ticks)
}
