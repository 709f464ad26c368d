package batch

import (
	"fmt"

	"github.com/mgpai22/subko/internal/subtitle"
)

// blocks per request when nothing else is configured
const DefaultSize = 10

// Range is a half-open [Start, End) slice of a track.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Make splits n blocks into consecutive ranges of size blocks, the last one
// possibly shorter.
func Make(n, size int) ([]Range, error) {
	if size <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", size)
	}
	if n <= 0 {
		return nil, nil
	}

	ranges := make([]Range, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		ranges = append(ranges, Range{Start: start, End: end})
	}
	return ranges, nil
}

// Serialize renders the blocks of one range as a request payload.
func Serialize(track subtitle.Track, r Range) string {
	return subtitle.Serialize(track[r.Start:r.End])
}
