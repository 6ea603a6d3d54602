package misc

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
)

// SetDefaultLog installs the process wide slog handler: tint on the console,
// plain JSON records when json is set.
func SetDefaultLog(level slog.Leveler, w io.Writer, json bool) {
	if w == nil {
		w = os.Stderr
	}

	var handler slog.Handler
	if json {
		handler = slog.NewJSONHandler(
			w,
			&slog.HandlerOptions{
				Level: level,
			},
		)
	} else {
		handler = tint.NewHandler(
			w,
			&tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
			},
		)
	}

	slog.SetDefault(slog.New(handler))
}
