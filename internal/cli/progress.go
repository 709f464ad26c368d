package cli

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/mgpai22/subko/internal/logging"
)

// progress renders batch completion as a bar on terminals and as log
// lines elsewhere.
type progress struct {
	out    io.Writer
	tty    bool
	logger *logging.Logger
	bar    *progressbar.ProgressBar
}

func newProgress(out io.Writer, logger *logging.Logger) *progress {
	return &progress{
		out:    out,
		tty:    isTerminal(out),
		logger: logger,
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Update is called once per finished batch.
func (p *progress) Update(done, total int) {
	if !p.tty {
		p.logger.Infow("Batch translated", "done", done, "total", total)
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Translating"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
