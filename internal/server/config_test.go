package server

import (
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	require.Equal(t, ":8001", cfg.Port)
	require.Equal(t, []string{"http://localhost:8001"}, cfg.AllowedOrigins)
	require.EqualValues(t, 512, cfg.MaxMessageSize)
	require.Equal(t, 256, cfg.SendBufferSize)
	require.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_From_Environment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example.com,http://b.example.com")
	t.Setenv("MAX_MESSAGE_SIZE", "2048")
	t.Setenv("SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	require.Equal(t, ":9000", cfg.Port)
	require.Equal(t, []string{"http://a.example.com", "http://b.example.com"}, cfg.AllowedOrigins)
	require.EqualValues(t, 2048, cfg.MaxMessageSize)
	require.Equal(t, 2*time.Second, cfg.ShutdownTimeout)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_Rejects_Invalid_Values(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown log format", key: "LOG_FORMAT", value: "xml"},
		{name: "unknown log level", key: "LOG_LEVEL", value: "loud"},
		{name: "unparsable size", key: "MAX_MESSAGE_SIZE", value: "big"},
		{name: "unparsable timeout", key: "SHUTDOWN_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			require.Error(t, err)
		})
	}
}

func TestLoadConfig_From_Env_File(t *testing.T) {
	if _, set := os.LookupEnv("SEND_BUFFER_SIZE"); set {
		t.Skip("SEND_BUFFER_SIZE already set in the environment")
	}
	t.Cleanup(func() { _ = os.Unsetenv("SEND_BUFFER_SIZE") })

	path := filepath.Join(t.TempDir(), "friendchat.env")
	require.NoError(t, os.WriteFile(path, []byte("SEND_BUFFER_SIZE=32\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 32, cfg.SendBufferSize)
}

func TestLoadConfig_Missing_Env_File(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
}

func TestSanitizeConfig(t *testing.T) {
	cfg := sanitizeConfig(Config{Port: " 7000 ", LogLevel: " Warn "})

	require.Equal(t, ":7000", cfg.Port)
	require.EqualValues(t, defaultMaxMessageSize, cfg.MaxMessageSize)
	require.Equal(t, defaultSendBufferSize, cfg.SendBufferSize)
	require.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	require.Equal(t, "warn", cfg.LogLevel)
	require.Equal(t, "text", cfg.LogFormat)
	require.NoError(t, cfg.Validate())
}

func TestNormalizePort(t *testing.T) {
	cases := map[string]string{
		"":               ":8001",
		"8080":           ":8080",
		":8080":          ":8080",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizePort(in), "port %q", in)
	}
}

func TestConfigureLogging(t *testing.T) {
	logger := logrus.New()

	require.NoError(t, ConfigureLogging(logger, Config{LogLevel: "debug", LogFormat: "json"}))
	require.Equal(t, logrus.DebugLevel, logger.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	require.NoError(t, ConfigureLogging(logger, Config{LogLevel: "warn", LogFormat: "text"}))
	require.Equal(t, logrus.WarnLevel, logger.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	require.Error(t, ConfigureLogging(logger, Config{LogLevel: "loud"}))
}

func TestOriginPolicy(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	policy := newOriginPolicy([]string{" http://Localhost:8001 ", "", "not a url", "https://chat.example.com"}, log)

	require.Len(t, hook.AllEntries(), 1, "invalid origin should be reported")

	tests := []struct {
		origin  string
		allowed bool
	}{
		{origin: "http://localhost:8001", allowed: true},
		{origin: "https://CHAT.example.com", allowed: true},
		{origin: "http://chat.example.com", allowed: false},
		{origin: "null", allowed: false},
		{origin: "", allowed: true},
	}
	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/ws", nil)
		if tt.origin != "" {
			r.Header.Set("Origin", tt.origin)
		}
		require.Equal(t, tt.allowed, policy.checkOrigin(r), "origin %q", tt.origin)
	}
}

func TestOriginPolicy_Wildcard(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	policy := newOriginPolicy([]string{"*"}, log)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "http://anywhere.example.com")

	require.True(t, policy.checkOrigin(r))
}

func TestOriginKey(t *testing.T) {
	key, err := originKey("HTTPS://Chat.Example.com:8443")
	require.NoError(t, err)
	require.Equal(t, "https://chat.example.com:8443", key)

	_, err = originKey("chat.example.com")
	require.ErrorIs(t, err, errInvalidOrigin)
}
