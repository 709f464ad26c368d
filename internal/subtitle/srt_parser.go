package subtitle

import (
	"strings"
)

type lineKind int

const (
	lineBlank lineKind = iota
	lineIndex
	lineTime
	lineText
)

// classify tags a single line. Digits-only lines are cue numbers, lines
// carrying the arrow are time ranges, everything else is dialogue.
func classify(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "":
		return lineBlank
	case isDigits(trimmed):
		return lineIndex
	case strings.Contains(trimmed, Arrow):
		return lineTime
	default:
		return lineText
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Parse splits raw SRT lines into blocks. A blank line closes the current
// block; it is not stored. Malformed blocks are kept as plain text lines so
// that nothing is lost on output.
func Parse(lines []string) Track {
	var track Track
	var current []string

	for i, line := range lines {
		line = strings.TrimRight(line, "\r\n")
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		if classify(line) == lineBlank {
			if len(current) > 0 {
				track = append(track, buildBlock(current))
				current = nil
			}
			continue
		}
		current = append(current, line)
	}

	if len(current) > 0 {
		track = append(track, buildBlock(current))
	}

	return track
}

// buildBlock assigns a block's lines to fields without reordering them: a
// leading index, then a time range directly after it (or first, when there
// is no index), then text.
func buildBlock(lines []string) Block {
	var b Block
	rest := lines

	if len(rest) > 0 && classify(rest[0]) == lineIndex {
		b.Index = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 && classify(rest[0]) == lineTime {
		b.TimeRange = rest[0]
		rest = rest[1:]
	}
	if len(rest) > 0 {
		b.Text = append([]string(nil), rest...)
	}
	return b
}

// ParseModelOutput re-parses a model response. The response's blank lines
// cannot be trusted, so blocks are delimited by index lines instead: an
// index line starts a new block, an arrow line is the current block's time
// range and any other non-blank line is dialogue. Text that arrives before
// the first index opens an index-less block; such a block ends at the
// next arrow line once it has dialogue.
func ParseModelOutput(text string) []Block {
	var blocks []Block
	var current *Block

	commit := func() {
		if current != nil && !current.IsEmpty() {
			blocks = append(blocks, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		switch classify(line) {
		case lineBlank:
			continue
		case lineIndex:
			commit()
			current = &Block{Index: strings.TrimSpace(line)}
		case lineTime:
			// an index-less block with dialogue is closed by the next arrow
			if current != nil && current.Index == "" && len(current.Text) > 0 {
				commit()
			}
			if current == nil {
				current = &Block{}
			}
			if current.TimeRange == "" {
				current.TimeRange = strings.TrimSpace(line)
			} else {
				current.Text = append(current.Text, line)
			}
		case lineText:
			if current == nil {
				current = &Block{}
			}
			current.Text = append(current.Text, line)
		}
	}
	commit()

	return blocks
}

// Serialize renders blocks back to SRT text, each block followed by one
// blank line.
func Serialize(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		for _, line := range b.Lines() {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
