package actors

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-newsroom/internal/domain"
)

var (
	// ErrTokenInvalid indicates the bearer token failed verification.
	ErrTokenInvalid = errors.New("actors: invalid token")
	// ErrSubjectMissing indicates the token carries no subject claim.
	ErrSubjectMissing = errors.New("actors: token subject missing")
	// ErrRoleUnresolved indicates the token role claim is absent or unknown.
	ErrRoleUnresolved = errors.New("actors: token role unresolved")
	// ErrSecretRequired indicates the resolver was built without a signing secret.
	ErrSecretRequired = errors.New("actors: signing secret required")
)

const (
	claimRole  = "role"
	claimName  = "name"
	claimEmail = "email"
)

// JWTConfig configures HS256 token verification and issuance.
type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// JWTResolver turns bearer tokens into actors.
type JWTResolver struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// NewJWTResolver constructs a resolver. The secret is required.
func NewJWTResolver(cfg JWTConfig) (*JWTResolver, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrSecretRequired
	}
	return &JWTResolver{
		secret:   []byte(cfg.Secret),
		issuer:   strings.TrimSpace(cfg.Issuer),
		audience: strings.TrimSpace(cfg.Audience),
		leeway:   cfg.Leeway,
		now:      time.Now,
	}, nil
}

// Resolve verifies the token and maps its claims onto an actor.
func (r *JWTResolver) Resolve(token string) (*domain.Actor, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(r.leeway),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(r.now),
	}
	if r.issuer != "" {
		opts = append(opts, jwt.WithIssuer(r.issuer))
	}
	if r.audience != "" {
		opts = append(opts, jwt.WithAudience(r.audience))
	}

	parsed, err := jwt.Parse(strings.TrimSpace(token), func(*jwt.Token) (any, error) {
		return r.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	subject, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(subject) == "" {
		return nil, ErrSubjectMissing
	}
	rawRole, _ := claims[claimRole].(string)
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoleUnresolved, rawRole)
	}

	actor := &domain.Actor{ID: subject, Role: role}
	actor.Name, _ = claims[claimName].(string)
	actor.Email, _ = claims[claimEmail].(string)
	return actor, nil
}

// Issue signs a token for actor valid for ttl. It backs the CLI token
// command and tests.
func (r *JWTResolver) Issue(actor domain.Actor, ttl time.Duration) (string, error) {
	now := r.now()
	claims := jwt.MapClaims{
		"sub":     actor.ID,
		claimRole: string(actor.Role),
		"iat":     now.Unix(),
		"exp":     now.Add(ttl).Unix(),
	}
	if actor.Name != "" {
		claims[claimName] = actor.Name
	}
	if actor.Email != "" {
		claims[claimEmail] = actor.Email
	}
	if r.issuer != "" {
		claims["iss"] = r.issuer
	}
	if r.audience != "" {
		claims["aud"] = r.audience
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(r.secret)
}
