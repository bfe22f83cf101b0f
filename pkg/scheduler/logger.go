package scheduler

import (
	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// zerologAdapter 把 gocron 的日志接口转到 zerolog.
type zerologAdapter struct {
	l *zerolog.Logger
}

var _ gocron.Logger = (*zerologAdapter)(nil)

func newLogger(l *zerolog.Logger) gocron.Logger {
	sub := l.With().Str("component", "scheduler").Logger()

	return &zerologAdapter{l: &sub}
}

func (a *zerologAdapter) Debug(msg string, args ...any) { a.l.Debug().Fields(args).Msg(msg) }
func (a *zerologAdapter) Info(msg string, args ...any)  { a.l.Info().Fields(args).Msg(msg) }
func (a *zerologAdapter) Warn(msg string, args ...any)  { a.l.Warn().Fields(args).Msg(msg) }
func (a *zerologAdapter) Error(msg string, args ...any) { a.l.Error().Fields(args).Msg(msg) }
