package actors

import (
	"context"

	"github.com/goliatone/go-newsroom/internal/domain"
)

type contextKey struct{}

// WithActor stores the resolved caller on the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the caller stored with WithActor.
func FromContext(ctx context.Context) (*domain.Actor, bool) {
	if ctx == nil {
		return nil, false
	}
	actor, ok := ctx.Value(contextKey{}).(domain.Actor)
	if !ok {
		return nil, false
	}
	return &actor, true
}
