package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.False(t, cfg.OTel.Enabled)
	assert.Equal(t, "ambitions", cfg.OTel.ServiceName)
	assert.Empty(t, cfg.ManagerEmail)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "ambitions.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
db: /var/lib/ambitions.db
listen: ":9000"
manager_email: boss@example.com
log_level: debug
otel:
  enabled: true
  stdout: true
`), 0o644))

	t.Setenv("AMBITIONS_LISTEN", ":9100")
	t.Setenv("AMBITIONS_OTEL_METRICS_ENDPOINT", "collector:4318")

	cfg, err := Load(NewViper(), file)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/ambitions.db", cfg.DBPath)
	assert.Equal(t, ":9100", cfg.Listen)
	assert.Equal(t, "boss@example.com", cfg.ManagerEmail)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.OTel.Enabled)
	assert.True(t, cfg.OTel.Stdout)
	assert.Equal(t, "collector:4318", cfg.OTel.MetricsEndpoint)
}

func TestLoad_HomeConfigIsOptionalButRead(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".ambitions"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".ambitions", "config.yaml"),
		[]byte("roster_file: /etc/ambitions/roster.yaml\n"), 0o644))

	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, "/etc/ambitions/roster.yaml", cfg.RosterFile)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	tests := []struct {
		env, value, want string
	}{
		{"AMBITIONS_LOG_LEVEL", "loud", "log_level"},
		{"AMBITIONS_LOG_FORMAT", "xml", "log_format"},
		{"AMBITIONS_MANAGER_EMAIL", "not-an-email", "manager_email"},
	}
	for _, tc := range tests {
		t.Run(tc.env, func(t *testing.T) {
			t.Setenv(tc.env, tc.value)
			_, err := Load(NewViper(), "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestNewLogger_RespectsLevelAndFormat(t *testing.T) {
	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"
	cfg.LogFormat = "json"
	logger := cfg.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "goal_id", "g1")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"goal_id":"g1"`)
}
