package events

import (
	"github.com/ThreeDotsLabs/watermill"

	"github.com/ghuser/lendingdesk/pkg/logger"
)

// logAdapter routes Watermill's internal logging through logger.Logger.
// Watermill's trace level is folded into debug.
type logAdapter struct{ log logger.Logger }

func newLogAdapter(log logger.Logger) watermill.LoggerAdapter {
	return logAdapter{log: log.With("component", "watermill")}
}

func (a logAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Error(msg, append(args(fields), "error", err)...)
}

func (a logAdapter) Info(msg string, fields watermill.LogFields)  { a.log.Info(msg, args(fields)...) }
func (a logAdapter) Debug(msg string, fields watermill.LogFields) { a.log.Debug(msg, args(fields)...) }
func (a logAdapter) Trace(msg string, fields watermill.LogFields) { a.log.Debug(msg, args(fields)...) }

func (a logAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return logAdapter{log: a.log.With(args(fields)...)}
}

func args(fields watermill.LogFields) []any {
	out := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}
