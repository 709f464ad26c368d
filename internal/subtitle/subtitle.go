package subtitle

import (
	"strconv"
	"strings"
)

// Arrow separates the start and end timestamps of a cue.
const Arrow = "-->"

// Block is one cue: index line, time range line and dialogue lines.
// Index and TimeRange are carried verbatim and never reformatted.
type Block struct {
	Index     string
	TimeRange string
	Text      []string
}

// ordered cue list, file order is playback order
type Track []Block

// Number returns the cue number, or an error when Index is not numeric.
func (b Block) Number() (int, error) {
	return strconv.Atoi(strings.TrimSpace(b.Index))
}

// Lines returns the block's physical lines in output order.
func (b Block) Lines() []string {
	lines := make([]string, 0, len(b.Text)+2)
	if b.Index != "" {
		lines = append(lines, b.Index)
	}
	if b.TimeRange != "" {
		lines = append(lines, b.TimeRange)
	}
	return append(lines, b.Text...)
}

// joined dialogue text
func (b Block) Dialogue() string {
	return strings.Join(b.Text, "\n")
}

func (b Block) IsEmpty() bool {
	return b.Index == "" && b.TimeRange == "" && len(b.Text) == 0
}

// Clone returns a copy whose Text can be modified independently.
func (t Track) Clone() Track {
	out := make(Track, len(t))
	for i, b := range t {
		out[i] = b
		out[i].Text = append([]string(nil), b.Text...)
	}
	return out
}
