package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConfig_Validate(t *testing.T) {
	cfg := Default()
	require.ErrorIs(t, cfg.Validate(), ErrDatabaseURLRequired)

	cfg.DatabaseURL = "postgres://localhost:5432/forms"
	require.NoError(t, cfg.Validate())
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
port: "9090"
database_url: postgres://file/forms
allow_origins:
  - https://forms.example.com
request_timeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := FromFile(path, Default())
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "localhost", cfg.Host)
	require.Equal(t, "postgres://file/forms", cfg.DatabaseURL)
	require.Equal(t, []string{"https://forms.example.com"}, cfg.AllowOrigins)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
}

func TestFromFile_Missing(t *testing.T) {
	base := Default()
	cfg, err := FromFile(filepath.Join(t.TempDir(), "nope.yaml"), base)
	require.Error(t, err)
	require.Equal(t, base, cfg)
}

func TestFromEnv_OverridesFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DATABASE_URL", "postgres://env/forms")
	t.Setenv("ALLOW_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DEBUG", "true")
	t.Setenv("ACCESS_TOKEN_TTL", "not-a-duration")

	logger := NewConfigLogger()
	base := Default()
	base.DatabaseURL = "postgres://file/forms"

	cfg, err := FromEnv(base, logger)
	require.NoError(t, err)
	require.Equal(t, "postgres://env/forms", cfg.DatabaseURL)
	require.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowOrigins)
	require.True(t, cfg.Debug)
	require.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)

	require.NotEmpty(t, logger.buffer)
	logger.FlushToZap(zap.NewNop())
	require.Empty(t, logger.buffer)
}

func TestFromEnv_BooleanOverrides(t *testing.T) {
	type testCase struct {
		name          string
		base          bool
		env           string
		expectedDebug bool
	}

	testCases := []testCase{
		{name: "Should turn debug off over a true base", base: true, env: "false", expectedDebug: false},
		{name: "Should turn debug on over a false base", base: false, env: "true", expectedDebug: true},
		{name: "Should keep base when value is invalid", base: true, env: "maybe", expectedDebug: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv("DEBUG", tc.env)
			t.Setenv("DEV", tc.env)

			base := Default()
			base.Debug = tc.base
			base.Dev = tc.base

			cfg, err := FromEnv(base, NewConfigLogger())
			require.NoError(t, err)
			require.Equal(t, tc.expectedDebug, cfg.Debug)
			require.Equal(t, tc.expectedDebug, cfg.Dev)
		})
	}
}

func TestFromFlags_DebugOverride(t *testing.T) {
	type testCase struct {
		name          string
		args          []string
		base          bool
		expectedDebug bool
		expectedPort  string
	}

	testCases := []testCase{
		{name: "Should turn debug off when flag is explicit", args: []string{"-debug=false"}, base: true, expectedDebug: false, expectedPort: "8080"},
		{name: "Should keep base debug when flag is absent", args: []string{"-port", "9000"}, base: true, expectedDebug: true, expectedPort: "9000"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			args := os.Args
			t.Cleanup(func() { os.Args = args })
			os.Args = append([]string{"backend"}, tc.args...)

			base := Default()
			base.Debug = tc.base

			cfg, err := FromFlags(base)
			require.NoError(t, err)
			require.Equal(t, tc.expectedDebug, cfg.Debug)
			require.Equal(t, tc.expectedPort, cfg.Port)
		})
	}
}
