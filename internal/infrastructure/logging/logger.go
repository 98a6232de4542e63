package logging

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Options configures New.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // logfmt, json
}

// New returns a leveled go-kit logger writing to w.
func New(w io.Writer, opts Options) (log.Logger, error) {
	var logger log.Logger
	switch strings.ToLower(opts.Format) {
	case "", "logfmt":
		logger = log.NewLogfmtLogger(log.NewSyncWriter(w))
	case "json":
		logger = log.NewJSONLogger(log.NewSyncWriter(w))
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}

	filter, err := levelFilter(opts.Level)
	if err != nil {
		return nil, err
	}

	logger = level.NewFilter(logger, filter)
	logger = log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return logger, nil
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l log.Logger) log.Logger {
	if l == nil {
		return log.NewNopLogger()
	}
	return l
}

func levelFilter(s string) (level.Option, error) {
	switch strings.ToLower(s) {
	case "debug":
		return level.AllowDebug(), nil
	case "", "info":
		return level.AllowInfo(), nil
	case "warn", "warning":
		return level.AllowWarn(), nil
	case "error":
		return level.AllowError(), nil
	default:
		return nil, fmt.Errorf("unsupported log level %q", s)
	}
}
