package security

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrDomainDenied = errors.New("email domain is not allowed")
)

const (
	SessionCookieName = "rental_session"
	sessionIssuer     = "frontdesk-rental-backend"
	sessionAudience   = "admin-session"
)

// SessionClaims identifies the signed-in administrator
type SessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

type TokenManager interface {
	GenerateSessionToken(email, name string) (string, time.Time, error)
	ValidateToken(tokenString string) (*SessionClaims, error)
	TTL() time.Duration
}

type tokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) TokenManager {
	return &tokenManager{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *tokenManager) TTL() time.Duration { return m.ttl }

func (m *tokenManager) GenerateSessionToken(email, name string) (string, time.Time, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := SessionClaims{
		Email: strings.ToLower(email),
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strings.ToLower(email),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    sessionIssuer,
			Audience:  jwt.ClaimStrings{sessionAudience},
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

func (m *tokenManager) ValidateToken(tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid && claims.Email != "" {
		return claims, nil
	}
	return nil, ErrInvalidToken
}

// EmailInDomain reports whether email belongs to domain (case-insensitive).
func EmailInDomain(email, domain string) bool {
	domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(domain)), "@")
	if domain == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(email)), "@"+domain)
}
