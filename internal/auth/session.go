package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Tomlord1122/tudu-backend/internal/config"
)

// ErrNoSession means the request carries no usable session: no token, a
// token that fails verification, or one without an email claim.
var ErrNoSession = errors.New("no valid session")

// Session is the identity the external provider vouches for.
type Session struct {
	Email string
}

// Claims defines the JWT claims structure issued by the identity provider.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// SessionResolver turns an inbound request into a Session.
type SessionResolver interface {
	Resolve(r *http.Request) (*Session, error)
}

// Provider verifies HS256 session tokens signed with a secret shared with
// the identity provider. It never issues tokens.
type Provider struct {
	secret     []byte
	cookieName string
	parser     *jwt.Parser
}

func NewProvider(cfg config.AuthConfig) *Provider {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &Provider{
		secret:     []byte(cfg.Secret),
		cookieName: cfg.CookieName,
		parser:     jwt.NewParser(opts...),
	}
}

// Resolve reads the token from the Authorization header, falling back to
// the session cookie.
func (p *Provider) Resolve(r *http.Request) (*Session, error) {
	tokenStr := bearerToken(r)
	if tokenStr == "" {
		if cookie, err := r.Cookie(p.cookieName); err == nil {
			tokenStr = cookie.Value
		}
	}
	if tokenStr == "" {
		return nil, ErrNoSession
	}

	claims, err := p.validate(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	email := strings.TrimSpace(claims.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrNoSession)
	}
	return &Session{Email: email}, nil
}

func (p *Provider) validate(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := p.parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

type contextKey string

const sessionKey = contextKey("session")

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom returns the session stored by WithSession, if any.
func SessionFrom(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey).(*Session)
	return s, ok && s != nil
}
