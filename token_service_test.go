package jobs_test

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	jobs "github.com/goliatone/go-jobs"
)

// MockLogger implements jobs.Logger for testing
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Info(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Warn(format string, args ...any) {
	m.Called(format, args)
}

func (m *MockLogger) Error(format string, args ...any) {
	m.Called(format, args)
}

var signingKey = []byte("test-signing-key")

func TestTokenService_RoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	service := jobs.NewTokenService(signingKey, 30*time.Minute,
		jobs.WithTokenClock(func() time.Time { return now }),
	)

	for _, subject := range []string{"acme", "a@b.io", "ünïcode subject", "550e8400-e29b-41d4-a716-446655440000"} {
		token, err := service.Issue(subject)
		require.NoError(t, err)

		assert.Equal(t, jobs.TokenTypeBearer, token.TokenType)
		assert.Equal(t, now.Add(30*time.Minute), token.ExpiresAt.UTC())

		got, err := service.Verify(token.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, subject, got)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	issued := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	current := issued
	clock := func() time.Time { return current }

	service := jobs.NewTokenService(signingKey, time.Minute,
		jobs.WithTokenClock(clock),
		jobs.WithTokenLogger(jobs.NopLogger()),
	)

	token, err := service.Issue("acme")
	require.NoError(t, err)

	current = issued.Add(59 * time.Second)
	_, err = service.Verify(token.AccessToken)
	assert.NoError(t, err)

	current = issued.Add(2 * time.Minute)
	_, err = service.Verify(token.AccessToken)
	assert.ErrorIs(t, err, jobs.ErrMalformedToken)
	assert.True(t, jobs.IsAuthenticationError(err))
}

func TestTokenService_IssueRequiresSubject(t *testing.T) {
	service := jobs.NewTokenService(signingKey, time.Minute)

	_, err := service.Issue("")
	assert.ErrorIs(t, err, jobs.ErrMissingSubject)
}

func TestTokenService_MissingSubject(t *testing.T) {
	service := jobs.NewTokenService(signingKey, time.Minute)

	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(signingKey)
	require.NoError(t, err)

	_, err = service.Verify(raw)
	assert.ErrorIs(t, err, jobs.ErrMissingSubject)
}

func TestTokenService_Rejects(t *testing.T) {
	logger := &MockLogger{}
	logger.On("Debug", mock.Anything, mock.Anything).Return()

	service := jobs.NewTokenService(signingKey, time.Minute, jobs.WithTokenLogger(logger))

	valid, err := service.Issue("acme")
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return raw
	}
	future := time.Now().Add(time.Minute).Unix()

	// swap the payload of a valid token for one claiming another subject
	parts := strings.Split(valid.AccessToken, ".")
	require.Len(t, parts, 3)
	forgedPayload := strings.Split(sign(jwt.SigningMethodHS256, []byte("x"), jwt.MapClaims{"sub": "evil", "exp": future}), ".")[1]
	tampered := parts[0] + "." + forgedPayload + "." + parts[2]

	tests := map[string]string{
		"empty":           "",
		"garbage":         "not.a.jwt",
		"tampered":        tampered,
		"other key":       sign(jwt.SigningMethodHS256, []byte("other-key"), jwt.MapClaims{"sub": "acme", "exp": future}),
		"other algorithm": sign(jwt.SigningMethodHS512, signingKey, jwt.MapClaims{"sub": "acme", "exp": future}),
		"alg none":        sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, jwt.MapClaims{"sub": "acme", "exp": future}),
		"no expiry":       sign(jwt.SigningMethodHS256, signingKey, jwt.MapClaims{"sub": "acme"}),
	}

	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			subject, err := service.Verify(raw)
			assert.ErrorIs(t, err, jobs.ErrMalformedToken)
			assert.Empty(t, subject)
		})
	}

	logger.AssertCalled(t, "Debug", mock.Anything, mock.Anything)
}

func TestTokenService_Issuer(t *testing.T) {
	service := jobs.NewTokenService(signingKey, time.Minute, jobs.WithIssuer("jobs"), jobs.WithTokenLogger(jobs.NopLogger()))
	foreign := jobs.NewTokenService(signingKey, time.Minute, jobs.WithIssuer("elsewhere"))

	token, err := foreign.Issue("acme")
	require.NoError(t, err)

	_, err = service.Verify(token.AccessToken)
	assert.ErrorIs(t, err, jobs.ErrMalformedToken)

	token, err = service.Issue("acme")
	require.NoError(t, err)
	subject, err := service.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acme", subject)
}

func TestTokenService_SigningMethod(t *testing.T) {
	service := jobs.NewTokenService(signingKey, time.Minute, jobs.WithSigningMethod(jwt.SigningMethodHS384))

	token, err := service.Issue("acme")
	require.NoError(t, err)

	parsed, _, err := jwt.NewParser().ParseUnverified(token.AccessToken, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "HS384", parsed.Header["alg"])

	subject, err := service.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acme", subject)
}

func TestSigningMethodFromName(t *testing.T) {
	for _, name := range []string{"HS256", "HS384", "HS512"} {
		method, err := jobs.SigningMethodFromName(name)
		require.NoError(t, err)
		assert.Equal(t, name, method.Alg())
	}

	for _, name := range []string{"", "RS256", "none", "ES256"} {
		_, err := jobs.SigningMethodFromName(name)
		assert.Error(t, err, "algorithm %q", name)
	}
}
