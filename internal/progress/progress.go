package progress

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Bar reports progress on a writer. A nil *Bar is valid and does nothing.
type Bar struct {
	bar *progressbar.ProgressBar
}

func New(w io.Writer, total int, description string) *Bar {
	return &Bar{bar: progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (b *Bar) Add(n int) {
	if b == nil {
		return
	}
	_ = b.bar.Add(n)
}

// ChangeMax resets the total, e.g. once the amount of work is known.
func (b *Bar) ChangeMax(total int) {
	if b == nil {
		return
	}
	b.bar.ChangeMax(total)
}

func (b *Bar) Finish() {
	if b == nil {
		return
	}
	_ = b.bar.Finish()
}
