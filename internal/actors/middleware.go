package actors

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/goliatone/go-newsroom/internal/logging"
	"github.com/goliatone/go-newsroom/pkg/interfaces"
)

// Header names read by HeaderResolver.
const (
	HeaderActorID    = "X-Actor-ID"
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorName  = "X-Actor-Name"
	HeaderActorEmail = "X-Actor-Email"
)

// RequestResolver extracts the caller from an inbound request. A nil actor
// with a nil error means the request is anonymous.
type RequestResolver interface {
	ResolveRequest(r *http.Request) (*domain.Actor, error)
}

// ResolveRequest reads a bearer token from the Authorization header.
func (r *JWTResolver) ResolveRequest(req *http.Request) (*domain.Actor, error) {
	auth := strings.TrimSpace(req.Header.Get("Authorization"))
	if auth == "" {
		return nil, nil
	}
	if !strings.HasPrefix(auth, "Bearer ") {
		return nil, ErrTokenInvalid
	}
	return r.Resolve(auth[len("Bearer "):])
}

// HeaderResolver trusts X-Actor-* headers. Use it only behind a proxy that
// authenticates callers, or in development.
type HeaderResolver struct{}

func (HeaderResolver) ResolveRequest(req *http.Request) (*domain.Actor, error) {
	id := strings.TrimSpace(req.Header.Get(HeaderActorID))
	rawRole := strings.TrimSpace(req.Header.Get(HeaderActorRole))
	if id == "" && rawRole == "" {
		return nil, nil
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, ErrRoleUnresolved
	}
	return &domain.Actor{
		ID:    id,
		Role:  role,
		Name:  strings.TrimSpace(req.Header.Get(HeaderActorName)),
		Email: strings.TrimSpace(req.Header.Get(HeaderActorEmail)),
	}, nil
}

// Middleware stores the resolved actor on the request context. Requests that
// cannot be resolved continue anonymously; handlers decide whether an actor
// is required.
func Middleware(resolver RequestResolver, logger interfaces.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NoOp()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := resolver.ResolveRequest(r)
			if err != nil {
				logger.Warn("actors.resolve_failed", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if actor == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := WithActor(r.Context(), *actor)
			ctx = logging.ContextWithFields(ctx, map[string]any{
				"actor_id":   actor.ID,
				"actor_role": string(actor.Role),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
