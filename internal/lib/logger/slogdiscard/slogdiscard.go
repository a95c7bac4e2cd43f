// Package slogdiscard provides a slog handler that drops every record, for
// tests and quiet library callers.
package slogdiscard

import (
	"context"
	"log/slog"
)

// NewDiscardLogger returns a logger that writes nothing
func NewDiscardLogger() *slog.Logger {
	return slog.New(NewDiscardHandler())
}

// NewDiscardHandler returns a handler that drops records
func NewDiscardHandler() *DiscardHandler {
	return &DiscardHandler{}
}

// DiscardHandler implements slog.Handler and ignores everything
type DiscardHandler struct{}

// Enabled reports false so callers skip building attributes
func (d *DiscardHandler) Enabled(context.Context, slog.Level) bool {
	return false
}

func (d *DiscardHandler) Handle(context.Context, slog.Record) error {
	return nil
}

func (d *DiscardHandler) WithAttrs([]slog.Attr) slog.Handler {
	return d
}

func (d *DiscardHandler) WithGroup(string) slog.Handler {
	return d
}
