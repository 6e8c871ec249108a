package sequencer

import (
	"fmt"
	"sync"
)

// NoPhrase marks an empty arrangement cell
const NoPhrase = -1

// Arrangement maps rows (bars) x channels to phrase ids
type Arrangement struct {
	mu    sync.RWMutex
	cells [NumRows][NumChannels]int
}

// NewArrangement creates an empty arrangement
func NewArrangement() *Arrangement {
	a := &Arrangement{}
	for r := range a.cells {
		for c := range a.cells[r] {
			a.cells[r][c] = NoPhrase
		}
	}
	return a
}

func checkCell(row, channel int) error {
	if row < 0 || row >= NumRows || channel < 0 || channel >= NumChannels {
		return fmt.Errorf("cell %d/%d: %w", row, channel, ErrOutOfRange)
	}
	return nil
}

// Get returns the phrase at row/channel, ok=false for empty or out of range
func (a *Arrangement) Get(row, channel int) (int, bool) {
	if checkCell(row, channel) != nil {
		return NoPhrase, false
	}
	a.mu.RLock()
	id := a.cells[row][channel]
	a.mu.RUnlock()
	return id, id != NoPhrase
}

// Set assigns phrase id to row/channel
func (a *Arrangement) Set(row, channel, id int) error {
	if err := checkCell(row, channel); err != nil {
		return err
	}
	if err := checkPhraseID(id); err != nil {
		return err
	}
	a.mu.Lock()
	a.cells[row][channel] = id
	a.mu.Unlock()
	return nil
}

// Clear empties row/channel
func (a *Arrangement) Clear(row, channel int) error {
	if err := checkCell(row, channel); err != nil {
		return err
	}
	a.mu.Lock()
	a.cells[row][channel] = NoPhrase
	a.mu.Unlock()
	return nil
}

// Row returns a copy of one row (NoPhrase for empty cells)
func (a *Arrangement) Row(row int) [NumChannels]int {
	if row < 0 || row >= NumRows {
		var empty [NumChannels]int
		for i := range empty {
			empty[i] = NoPhrase
		}
		return empty
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cells[row]
}

// RowEmpty reports whether no channel in row has a phrase
func (a *Arrangement) RowEmpty(row int) bool {
	for _, id := range a.Row(row) {
		if id != NoPhrase {
			return false
		}
	}
	return true
}

// BarLength returns the longest phrase length in row, PageSize if the
// row is empty. Shorter phrases loop inside the bar.
func (a *Arrangement) BarLength(row int, bank *Bank) int {
	max := PageSize
	for _, id := range a.Row(row) {
		if id == NoPhrase {
			continue
		}
		if l := bank.Length(id); l > max {
			max = l
		}
	}
	return max
}

// NextSongRow returns the row song mode plays after row: the next row,
// or 0 once that is past the end or empty
func (a *Arrangement) NextSongRow(row int) int {
	next := row + 1
	if next >= NumRows || a.RowEmpty(next) {
		return 0
	}
	return next
}
