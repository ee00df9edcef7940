// Package auth issues and verifies the signed identity assertions carried as bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"feedback-board/internal/apperr"
	"feedback-board/internal/domain"
)

// DefaultTTL is how long an issued assertion stays valid.
const DefaultTTL = 24 * time.Hour

const bearerScheme = "Bearer "

// Claims is the signed payload of an assertion.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 assertions.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Issue signs an assertion for subject and returns it with its expiry.
func (m *TokenManager) Issue(subject domain.Subject) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Username: subject.Username,
		Role:     string(subject.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, expires, nil
}

// Verify checks signature and expiry and returns the asserted subject.
func (m *TokenManager) Verify(token string) (domain.Subject, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Subject{}, apperr.Wrap(apperr.CodeUnauthenticated, "token has expired", err)
		}
		return domain.Subject{}, apperr.Wrap(apperr.CodeUnauthenticated, "token is not valid", err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return domain.Subject{}, apperr.New(apperr.CodeUnauthenticated, "token is not valid")
	}

	role := domain.Role(claims.Role)
	if role != domain.RoleAdmin {
		role = domain.RoleUser
	}
	return domain.Subject{
		ID:       claims.Subject,
		Username: claims.Username,
		Role:     role,
	}, nil
}

// ParseBearer extracts the assertion from an Authorization header value.
func ParseBearer(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", apperr.New(apperr.CodeUnauthenticated, "authorization denied, no token provided")
	}
	if !strings.HasPrefix(header, bearerScheme) {
		return "", apperr.New(apperr.CodeUnauthenticated, `token format is "Bearer <token>"`)
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerScheme))
	if token == "" {
		return "", apperr.New(apperr.CodeUnauthenticated, "authorization denied, token is missing")
	}
	return token, nil
}

type ctxKey uint32

const subjectKey ctxKey = iota

func WithSubject(ctx context.Context, subject domain.Subject) context.Context {
	return context.WithValue(ctx, subjectKey, subject)
}

// SubjectFrom returns the authenticated subject stored in ctx.
func SubjectFrom(ctx context.Context) (domain.Subject, bool) {
	subject, ok := ctx.Value(subjectKey).(domain.Subject)
	return subject, ok && subject.ID != ""
}
