package pipeline

import (
	"fmt"
	"strings"

	"github.com/mgpai22/subko/internal/batch"
	"github.com/mgpai22/subko/internal/subtitle"
)

// Mismatch describes a batch whose response did not line up with the
// request. It is reported, never fatal.
type Mismatch struct {
	Batch    int
	Range    batch.Range
	Expected int // blocks sent
	Got      int // blocks parsed from the response
	// track positions whose echoed index differed from the source
	IndexMismatches []int
	// track positions that kept their source text
	Missing []int
}

func (m Mismatch) Error() string {
	var parts []string
	if m.Expected != m.Got {
		parts = append(parts, fmt.Sprintf("expected %d blocks, got %d", m.Expected, m.Got))
	}
	if len(m.IndexMismatches) > 0 {
		parts = append(parts, fmt.Sprintf("%d echoed indices differ", len(m.IndexMismatches)))
	}
	if len(m.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("%d cues left untranslated", len(m.Missing)))
	}
	return fmt.Sprintf("batch %d %s: %s", m.Batch, m.Range, strings.Join(parts, ", "))
}

func (m Mismatch) empty() bool {
	return m.Expected == m.Got && len(m.IndexMismatches) == 0 && len(m.Missing) == 0
}

// merge copies dialogue from parsed into segment. Index and time range of
// the segment are never touched. It returns the positions (relative to the
// segment) whose echoed index differed and those that received no dialogue
// and so keep their source text.
func merge(
	segment subtitle.Track,
	parsed []subtitle.Block,
	align Align,
) (indexMismatches, missing []int) {
	filled := make([]bool, len(segment))
	fill := func(pos int, b subtitle.Block) {
		if len(b.Text) == 0 {
			return
		}
		segment[pos].Text = append([]string(nil), b.Text...)
		filled[pos] = true
	}

	switch align {
	case AlignIndex:
		byIndex := make(map[string]subtitle.Block, len(parsed))
		for _, b := range parsed {
			if b.Index == "" {
				continue
			}
			if _, seen := byIndex[b.Index]; !seen {
				byIndex[b.Index] = b
			}
		}
		for pos := range segment {
			if b, ok := byIndex[strings.TrimSpace(segment[pos].Index)]; ok {
				fill(pos, b)
			}
		}
	default:
		for pos, b := range parsed {
			if pos >= len(segment) {
				break
			}
			if b.Index != "" && b.Index != strings.TrimSpace(segment[pos].Index) {
				indexMismatches = append(indexMismatches, pos)
			}
			fill(pos, b)
		}
	}

	for pos, ok := range filled {
		if !ok {
			missing = append(missing, pos)
		}
	}
	return indexMismatches, missing
}

func offset(positions []int, by int) []int {
	if len(positions) == 0 {
		return nil
	}
	out := make([]int, len(positions))
	for i, p := range positions {
		out[i] = p + by
	}
	return out
}

// unchanged lists filled positions whose dialogue is still Latin script
// while the source was Latin too.
func unchanged(source, track subtitle.Track, r batch.Range, missing []int) []int {
	skip := make(map[int]bool, len(missing))
	for _, pos := range missing {
		skip[pos] = true
	}

	var out []int
	for pos := r.Start; pos < r.End; pos++ {
		if skip[pos] {
			continue
		}
		before := subtitle.DetectScript(source[pos].Dialogue())
		after := subtitle.DetectScript(track[pos].Dialogue())
		if before == subtitle.ScriptLatin && after == subtitle.ScriptLatin {
			out = append(out, pos)
		}
	}
	return out
}
