package client

import (
	"context"
	"log/slog"
	"time"
)

// OperationEvent describes one Model operation
type OperationEvent struct {
	Operation string
	Table     string
	Duration  time.Duration
	Error     error
	Start     time.Time
	End       time.Time
}

// Middleware intercepts Model operations
type Middleware func(ctx context.Context, event *OperationEvent, next func() error) error

// intercept runs exec through the middleware chain
func (c *Client) intercept(ctx context.Context, op, table string, exec func() error) error {
	if len(c.middlewares) == 0 {
		return exec()
	}

	event := &OperationEvent{
		Operation: op,
		Table:     table,
		Start:     time.Now(),
	}

	var next func() error
	index := 0

	next = func() error {
		if index >= len(c.middlewares) {
			err := exec()
			event.End = time.Now()
			event.Duration = event.End.Sub(event.Start)
			event.Error = err
			return err
		}

		mw := c.middlewares[index]
		index++
		return mw(ctx, event, next)
	}

	return next()
}

// LoggingMiddleware logs each operation at debug level and failures at warn
func LoggingMiddleware(l *slog.Logger) Middleware {
	return func(ctx context.Context, event *OperationEvent, next func() error) error {
		err := next()
		if err != nil {
			l.WarnContext(ctx, "model operation failed",
				"op", event.Operation, "table", event.Table, "error", err)
		} else {
			l.DebugContext(ctx, "model operation",
				"op", event.Operation, "table", event.Table, "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware reports the duration of each operation
func TimingMiddleware(onTiming func(op, table string, duration time.Duration)) Middleware {
	return func(ctx context.Context, event *OperationEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event.Operation, event.Table, event.Duration)
		}
		return err
	}
}
