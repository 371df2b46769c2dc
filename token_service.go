package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTypeBearer is the only token type issued.
const TokenTypeBearer = "bearer"

// Token is the result of a successful login.
type Token struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// TokenService issues and verifies signed, expiring bearer tokens. Verify
// returns only the subject; resolving it to an entity is up to the caller.
type TokenService interface {
	Issue(subject string) (Token, error)
	Verify(token string) (string, error)
}

// TokenServiceOption customizes a token service.
type TokenServiceOption func(*tokenService)

// WithSigningMethod selects the HMAC algorithm. Defaults to HS256.
func WithSigningMethod(method *jwt.SigningMethodHMAC) TokenServiceOption {
	return func(ts *tokenService) {
		if method != nil {
			ts.method = method
		}
	}
}

// WithIssuer sets the iss claim and requires it on verification.
func WithIssuer(issuer string) TokenServiceOption {
	return func(ts *tokenService) {
		ts.issuer = issuer
	}
}

// WithTokenClock injects the clock used for iat, exp and verification.
func WithTokenClock(clock Clock) TokenServiceOption {
	return func(ts *tokenService) {
		if clock != nil {
			ts.now = clock
		}
	}
}

// WithTokenLogger overrides the logger.
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *tokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

type tokenService struct {
	signingKey []byte
	ttl        time.Duration
	method     *jwt.SigningMethodHMAC
	issuer     string
	now        Clock
	logger     Logger
}

// NewTokenService creates a TokenService signing with the server held key.
func NewTokenService(signingKey []byte, ttl time.Duration, opts ...TokenServiceOption) TokenService {
	ts := &tokenService{
		signingKey: signingKey,
		ttl:        ttl,
		method:     jwt.SigningMethodHS256,
		now:        utcNow,
		logger:     defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}
	return ts
}

// Issue embeds subject and an absolute expiry into a signed token.
func (ts *tokenService) Issue(subject string) (Token, error) {
	if subject == "" {
		return Token{}, ErrMissingSubject
	}

	now := ts.now()
	expiresAt := now.Add(ts.ttl)

	claims := jwt.RegisteredClaims{
		Issuer:    ts.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(ts.method, claims).SignedString(ts.signingKey)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}

	return Token{
		AccessToken: signed,
		TokenType:   TokenTypeBearer,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

// Verify checks signature, algorithm and expiry and returns the subject.
func (ts *tokenService) Verify(raw string) (string, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{ts.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			ts.logger.Debug("token verification failed: token expired")
		} else {
			ts.logger.Debug("token verification failed: %v", err)
		}
		return "", ErrMalformedToken
	}

	if !token.Valid {
		return "", ErrMalformedToken
	}

	if claims.Subject == "" {
		return "", ErrMissingSubject
	}

	return claims.Subject, nil
}

// SigningMethodFromName resolves an HMAC algorithm name such as "HS256".
func SigningMethodFromName(name string) (*jwt.SigningMethodHMAC, error) {
	method, ok := jwt.GetSigningMethod(name).(*jwt.SigningMethodHMAC)
	if !ok || method == nil {
		return nil, fmt.Errorf("unsupported signing algorithm %q: only HS256, HS384 and HS512 are allowed", name)
	}
	return method, nil
}
