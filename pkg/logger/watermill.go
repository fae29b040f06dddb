package logger

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// Watermill adapts a zap logger to watermill.LoggerAdapter.
type Watermill struct {
	l *zap.Logger
}

func NewWatermill(l *zap.Logger) *Watermill {
	return &Watermill{l: l}
}

func (w *Watermill) Error(msg string, err error, fields watermill.LogFields) {
	w.l.Error(msg, append(toZap(fields), zap.Error(err))...)
}

func (w *Watermill) Info(msg string, fields watermill.LogFields) {
	w.l.Info(msg, toZap(fields)...)
}

func (w *Watermill) Debug(msg string, fields watermill.LogFields) {
	w.l.Debug(msg, toZap(fields)...)
}

// Trace maps to debug; zap has no trace level.
func (w *Watermill) Trace(msg string, fields watermill.LogFields) {
	w.l.Debug(msg, toZap(fields)...)
}

func (w *Watermill) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &Watermill{l: w.l.With(toZap(fields)...)}
}

func toZap(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}
