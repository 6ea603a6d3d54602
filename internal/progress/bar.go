// Package progress renders download progress as a terminal bar with elapsed
// time, throughput and ETA.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Options configures the bar.
type Options struct {
	// Total is the expected size in bytes.
	Total uint64

	// Description is printed in front of the bar.
	Description string

	// Output is where the bar is drawn.
	// Default: os.Stderr
	Output io.Writer

	// Throttle is the minimum time between redraws.
	// Default: 65ms
	Throttle time.Duration
}

// Bar tracks cumulative byte counts. It is not safe for concurrent use.
type Bar struct {
	bar  *progressbar.ProgressBar
	last uint64
}

func NewBar(opts Options) *Bar {
	if opts.Output == nil {
		opts.Output = os.Stderr
	}
	if opts.Throttle == 0 {
		opts.Throttle = 65 * time.Millisecond
	}

	bar := progressbar.NewOptions64(
		int64(opts.Total),
		progressbar.OptionSetWriter(opts.Output),
		progressbar.OptionSetDescription(opts.Description),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(opts.Throttle),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "#",
			SaucerHead:    ">",
			SaucerPadding: "-",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(opts.Output, "\n")
		}),
	)

	return &Bar{
		bar: bar,
	}
}

// Set moves the bar to received bytes. Counts lower than the last one seen
// are ignored.
func (b *Bar) Set(received uint64) {
	if received < b.last {
		return
	}
	b.last = received
	_ = b.bar.Set64(int64(received))
}

// Received is the highest count passed to Set.
func (b *Bar) Received() uint64 {
	return b.last
}

// Finish completes the bar.
func (b *Bar) Finish() {
	_ = b.bar.Finish()
}
