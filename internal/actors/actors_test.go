package actors

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-newsroom/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResolver(t *testing.T) *JWTResolver {
	t.Helper()
	resolver, err := NewJWTResolver(JWTConfig{
		Secret:   "newsroom-test-secret",
		Issuer:   "newsroom",
		Audience: "admin",
		Leeway:   time.Second,
	})
	require.NoError(t, err)
	return resolver
}

func TestContextRoundTrip(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithActor(context.Background(), domain.Actor{ID: "u1", Role: domain.RoleEditor})
	actor, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", actor.ID)
	assert.Equal(t, domain.RoleEditor, actor.Role)
}

func TestNewJWTResolverRequiresSecret(t *testing.T) {
	_, err := NewJWTResolver(JWTConfig{Secret: "  "})
	assert.ErrorIs(t, err, ErrSecretRequired)
}

func TestIssueAndResolve(t *testing.T) {
	resolver := newResolver(t)

	token, err := resolver.Issue(domain.Actor{ID: "u1", Role: domain.RoleFounder, Name: "Ada", Email: "ada@example.com"}, time.Hour)
	require.NoError(t, err)

	actor, err := resolver.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, domain.Actor{ID: "u1", Role: domain.RoleFounder, Name: "Ada", Email: "ada@example.com"}, *actor)
}

func TestResolveRejectsExpiredToken(t *testing.T) {
	resolver := newResolver(t)
	resolver.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := resolver.Issue(domain.Actor{ID: "u1", Role: domain.RoleAdmin}, time.Minute)
	require.NoError(t, err)

	resolver.now = time.Now
	_, err = resolver.Resolve(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResolveRejectsForeignSecret(t *testing.T) {
	other, err := NewJWTResolver(JWTConfig{Secret: "other", Issuer: "newsroom", Audience: "admin"})
	require.NoError(t, err)
	token, err := other.Issue(domain.Actor{ID: "u1", Role: domain.RoleAdmin}, time.Hour)
	require.NoError(t, err)

	_, err = newResolver(t).Resolve(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestResolveRejectsUnknownRole(t *testing.T) {
	resolver := newResolver(t)
	token, err := resolver.Issue(domain.Actor{ID: "u1", Role: domain.Role("overlord")}, time.Hour)
	require.NoError(t, err)

	_, err = resolver.Resolve(token)
	assert.ErrorIs(t, err, ErrRoleUnresolved)
}

func TestHeaderResolver(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	actor, err := HeaderResolver{}.ResolveRequest(req)
	require.NoError(t, err)
	assert.Nil(t, actor)

	req.Header.Set(HeaderActorID, "u2")
	req.Header.Set(HeaderActorRole, "Admin")
	actor, err = HeaderResolver{}.ResolveRequest(req)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, actor.Role)

	req.Header.Set(HeaderActorRole, "janitor")
	_, err = HeaderResolver{}.ResolveRequest(req)
	assert.ErrorIs(t, err, ErrRoleUnresolved)
}

func TestMiddlewareStoresActor(t *testing.T) {
	resolver := newResolver(t)
	token, err := resolver.Issue(domain.Actor{ID: "u3", Role: domain.RoleEditor}, time.Hour)
	require.NoError(t, err)

	var seen *domain.Actor
	handler := Middleware(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	require.NotNil(t, seen)
	assert.Equal(t, "u3", seen.ID)

	seen = nil
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	handler.ServeHTTP(httptest.NewRecorder(), req)
	assert.Nil(t, seen, "invalid tokens continue anonymously")
}
