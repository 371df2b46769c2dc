package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Setenv("JOBS_DATABASE_URL", "file::memory:")
	t.Setenv("JOBS_JWT_SECRET_KEY", "secret")
}

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "jobs", cfg.GetAppName())
	assert.False(t, cfg.GetDebug())
	assert.Equal(t, "file::memory:", cfg.GetDatabaseURL())
	assert.Equal(t, "secret", cfg.GetSigningKey())
	assert.Equal(t, "HS256", cfg.GetSigningMethod())
	assert.Empty(t, cfg.GetIssuer())
	assert.Equal(t, 30*time.Minute, cfg.GetTokenExpiration())
	assert.Equal(t, DefaultPBKDF2Rounds, cfg.GetPasswordHashRounds())
}

func TestLoadConfig_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("JOBS_APP_NAME", "board")
	t.Setenv("JOBS_DEBUG", "true")
	t.Setenv("JOBS_JWT_ALGORITHM", "HS512")
	t.Setenv("JOBS_JWT_ISSUER", "board")
	t.Setenv("JOBS_JWT_TOKEN_EXPIRATION_MINUTES", "5")
	t.Setenv("JOBS_PASSWORD_HASH_ROUNDS", "1000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "board", cfg.GetAppName())
	assert.True(t, cfg.GetDebug())
	assert.Equal(t, "HS512", cfg.GetSigningMethod())
	assert.Equal(t, "board", cfg.GetIssuer())
	assert.Equal(t, 5*time.Minute, cfg.GetTokenExpiration())
	assert.Equal(t, 1000, cfg.GetPasswordHashRounds())
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing database url", env: map[string]string{"JOBS_JWT_SECRET_KEY": "secret"}},
		{name: "missing secret", env: map[string]string{"JOBS_DATABASE_URL": "file::memory:"}},
		{name: "unsupported algorithm", env: map[string]string{
			"JOBS_DATABASE_URL":   "file::memory:",
			"JOBS_JWT_SECRET_KEY": "secret",
			"JOBS_JWT_ALGORITHM":  "RS256",
		}},
		{name: "zero expiration", env: map[string]string{
			"JOBS_DATABASE_URL":                 "file::memory:",
			"JOBS_JWT_SECRET_KEY":               "secret",
			"JOBS_JWT_TOKEN_EXPIRATION_MINUTES": "0",
		}},
		{name: "non numeric rounds", env: map[string]string{
			"JOBS_DATABASE_URL":         "file::memory:",
			"JOBS_JWT_SECRET_KEY":       "secret",
			"JOBS_PASSWORD_HASH_ROUNDS": "many",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("JOBS_DATABASE_URL", "")
			t.Setenv("JOBS_JWT_SECRET_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfig()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestConfig_BuildsSubsystems(t *testing.T) {
	cfg := &Config{
		DatabaseURL:            "file::memory:",
		SigningKey:             "secret",
		SigningMethod:          "HS384",
		Issuer:                 "board",
		TokenExpirationMinutes: 10,
		PasswordHashRounds:     10,
	}
	require.NoError(t, cfg.Validate())

	tokens, err := cfg.TokenService(WithTokenLogger(NopLogger()))
	require.NoError(t, err)

	token, err := tokens.Issue("acme")
	require.NoError(t, err)
	subject, err := tokens.Verify(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "acme", subject)

	hash, err := cfg.PasswordHasher().HashPassword(testPassword)
	require.NoError(t, err)
	assert.Contains(t, hash, "$pbkdf2-sha256$10$")

	cfg.SigningMethod = "none"
	_, err = cfg.TokenService()
	assert.Error(t, err)
}
