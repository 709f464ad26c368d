package pipeline

import (
	"fmt"

	"github.com/mgpai22/subko/internal/batch"
	"github.com/mgpai22/subko/internal/translate"
)

// Align selects how parsed response blocks are matched to the batch.
type Align string

const (
	// i-th parsed block fills the i-th cue of the batch
	AlignPosition Align = "position"
	// parsed blocks fill the cue with the same echoed index
	AlignIndex Align = "index"
)

// ProgressFunc receives the number of finished batches after each one.
type ProgressFunc func(done, total int)

type Options struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	BatchSize    int // blocks per request (default 10)
	Concurrency  int // batches in flight (default 1, sequential)
	Align        Align
	// extra requests for a batch whose answer does not line up
	MismatchRetries int
	// probe the credential before the first batch
	Validate bool
	Progress ProgressFunc
}

func (o Options) withDefaults() Options {
	if o.BatchSize == 0 {
		o.BatchSize = batch.DefaultSize
	}
	if o.Concurrency == 0 {
		o.Concurrency = 1
	}
	if o.Align == "" {
		o.Align = AlignPosition
	}
	if o.SystemPrompt == "" {
		o.SystemPrompt = translate.DefaultSystemPrompt
	}
	if o.UserPrompt == "" {
		o.UserPrompt = translate.DefaultUserPrompt
	}
	return o
}

func (o Options) validate() error {
	if o.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", o.BatchSize)
	}
	if o.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be positive, got %d", o.Concurrency)
	}
	if o.MismatchRetries < 0 {
		return fmt.Errorf("mismatch retries cannot be negative, got %d", o.MismatchRetries)
	}
	if o.Align != AlignPosition && o.Align != AlignIndex {
		return fmt.Errorf("unknown alignment %q: use position or index", o.Align)
	}
	return nil
}

// ParseAlign converts a flag value to an Align.
func ParseAlign(s string) (Align, error) {
	switch Align(s) {
	case "", AlignPosition:
		return AlignPosition, nil
	case AlignIndex:
		return AlignIndex, nil
	default:
		return "", fmt.Errorf("unknown alignment %q: use position or index", s)
	}
}
