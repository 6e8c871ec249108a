package sequencer

// playhead is the per-bar stepping state shared by live playback and
// export: one row, a cursor per channel and the global bar tick.
type playhead struct {
	row     int
	cursors [NumChannels]int
	played  [NumChannels]int // step index last played per channel, -1 if none
	barTick int
}

func newPlayhead(row int) playhead {
	p := playhead{row: row}
	for i := range p.played {
		p.played[i] = -1
	}
	return p
}

// resetBar puts every channel back on step 0 regardless of wrap history
func (p *playhead) resetBar() {
	p.barTick = 0
	p.cursors = [NumChannels]int{}
}

// hit is a step that passed the evaluator
type hit struct {
	channel int
	step    Step
}

// advance plays one sixteenth on every channel of the current row and
// returns the steps that fired. boundary is true when the bar completed;
// cursors and bar tick are already back at zero then.
func (p *playhead) advance(bank *Bank, arr *Arrangement, eval *Evaluator, hits []hit) (out []hit, boundary bool) {
	out = hits[:0]
	row := arr.Row(p.row)

	for ch, id := range row {
		if id == NoPhrase {
			p.played[ch] = -1
			continue
		}

		step, length := bank.StepAt(id, p.cursors[ch])
		idx := p.cursors[ch] % length

		if step.IsNote() {
			key := CounterKey{Row: p.row, Channel: ch, Step: idx, Phrase: id, Condition: step.Condition}
			if eval.ShouldTrigger(step, key) {
				out = append(out, hit{channel: ch, step: step})
			}
		}

		// Each channel wraps on its own phrase length (polymeter)
		p.played[ch] = idx
		p.cursors[ch] = (idx + 1) % length
	}

	p.barTick++
	if p.barTick >= arr.BarLength(p.row, bank) {
		p.resetBar()
		return out, true
	}
	return out, false
}
