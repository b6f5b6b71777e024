package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey string

const (
	runIDKey  ctxKey = "run_id"
	sourceKey ctxKey = "source"
)

// WithRunID stores the conversion run ID in the context.
func WithRunID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromCtx extracts the run ID from the context.
// Returns uuid.Nil and false if the value is missing, nil UUID, or wrong type.
func RunIDFromCtx(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(runIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// WithSource stores the input dictionary name in the context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey, source)
}

// SourceFromCtx extracts the input dictionary name from the context.
// Returns an empty string if absent.
func SourceFromCtx(ctx context.Context) string {
	s, _ := ctx.Value(sourceKey).(string)
	return s
}
