package game

type Chart struct {
	Notes               []*Note
	Measures            []*Measure
	NoteCounts          []int64 // Rows by how many notes they hold at once
	NoteCountsAsStrings []string
	NoteCount           int64
	HoldCount           int64
	MineCount           int64
	Difficulty          Difficulty
}

// Columns is the number of input lanes this chart is played with.
func (c *Chart) Columns() int {
	return int(c.Difficulty.NKeys)
}

// Flat returns copies of the notes, in the form handed to the judge.
func (c *Chart) Flat() []Note {
	notes := make([]Note, len(c.Notes))
	for i, n := range c.Notes {
		notes[i] = *n
		notes[i].Reset()
	}
	return notes
}

// Finish fills in the counters and sorts the notes. Parsers call it
// once all notes have been added.
func (c *Chart) Finish() {
	SortNotes(c.Notes)
	c.NoteCount, c.HoldCount = 0, 0
	for _, n := range c.Notes {
		c.NoteCount++
		if n.Hold {
			c.HoldCount++
		}
	}
}
