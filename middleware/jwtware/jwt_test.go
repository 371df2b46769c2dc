package jwtware_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobs "github.com/goliatone/go-jobs"
	"github.com/goliatone/go-jobs/middleware/jwtware"
)

func newTokenService() jobs.TokenService {
	return jobs.NewTokenService([]byte("test-secret"), time.Hour, jobs.WithTokenLogger(jobs.NopLogger()))
}

// subjectResolver accepts any token the service verifies.
func subjectResolver(tokens jobs.TokenService) jwtware.Resolver {
	return func(_ context.Context, raw string) (any, error) {
		return tokens.Verify(raw)
	}
}

func newApp(cfg jwtware.Config) *fiber.App {
	app := fiber.New()
	app.Use(jwtware.New(cfg))
	app.Get("/me", func(c *fiber.Ctx) error {
		subject, ok := jwtware.Principal[string](c, cfg.ContextKey)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(subject)
	})
	return app
}

func TestJWTWare_ValidBearerToken(t *testing.T) {
	tokens := newTokenService()
	token, err := tokens.Issue("acme")
	require.NoError(t, err)

	app := newApp(jwtware.Config{Resolver: subjectResolver(tokens)})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "acme", string(body))
}

func TestJWTWare_Rejections(t *testing.T) {
	tokens := newTokenService()
	other := jobs.NewTokenService([]byte("other-secret"), time.Hour)
	forged, err := other.Issue("acme")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not.a.token"},
		{name: "foreign signature", header: "Bearer " + forged.AccessToken},
	}

	app := newApp(jwtware.Config{Resolver: subjectResolver(tokens)})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, "Bearer", resp.Header.Get(fiber.HeaderWWWAuthenticate))

			var payload map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
			assert.Equal(t, jwtware.UnauthorizedMessage, payload["detail"])
		})
	}
}

func TestJWTWare_ExpiredToken(t *testing.T) {
	issuedAt := time.Now().Add(-2 * time.Hour)
	past := jobs.NewTokenService([]byte("test-secret"), time.Hour,
		jobs.WithTokenClock(func() time.Time { return issuedAt }),
	)
	token, err := past.Issue("acme")
	require.NoError(t, err)

	app := newApp(jwtware.Config{Resolver: subjectResolver(newTokenService())})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token.AccessToken)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestJWTWare_CookieLookupAndContextKey(t *testing.T) {
	tokens := newTokenService()
	token, err := tokens.Issue("a@b.io")
	require.NoError(t, err)

	app := newApp(jwtware.Config{
		Resolver:    subjectResolver(tokens),
		TokenLookup: "header:Authorization,cookie:jwt",
		ContextKey:  "user",
	})

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token.AccessToken})

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "a@b.io", string(body))
}

func TestJWTWare_Filter(t *testing.T) {
	app := fiber.New()
	app.Use(jwtware.New(jwtware.Config{
		Resolver: subjectResolver(newTokenService()),
		Filter: func(c *fiber.Ctx) bool {
			return c.Path() == "/health"
		},
	}))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestJWTWare_CustomErrorHandler(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{
		Resolver: subjectResolver(newTokenService()),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			seen = err
			return c.SendStatus(fiber.StatusForbidden)
		},
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/me", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.ErrorIs(t, seen, jwtware.ErrJWTMissingOrMalformed)
}
