package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/phetchalermchai/it-inventory/internal/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFrom(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     string
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file or env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
				assert.Equal(t, []string{"http://localhost:8080"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Security.RateLimit.Enabled)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, 1, cfg.Dataset.HeaderRows)
				assert.Equal(t, ",", cfg.Dataset.Delimiter)
				assert.Equal(t, int64(10<<20), cfg.Dataset.MaxUploadBytes)
				assert.True(t, cfg.Dataset.LoadSample)
				assert.True(t, cfg.Telemetry.EnableMetrics)
				assert.False(t, cfg.Telemetry.EnableTracing)
				assert.Equal(t, 1024, cfg.WebSocket.ReadBufferSize)
				assert.Equal(t, 30*time.Second, cfg.WebSocket.PingPeriod)
			},
		},
		{
			name: "file overrides defaults",
			file: `
server:
  port: 9090
  read_timeout: 5s
dataset:
  header_rows: 2
  delimiter: ";"
  load_sample: false
logging:
  level: debug
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, 2, cfg.Dataset.HeaderRows)
				assert.Equal(t, ';', cfg.Dataset.DelimiterRune())
				assert.False(t, cfg.Dataset.LoadSample)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "env overrides file",
			file: "server:\n  port: 9090\n",
			env: map[string]string{
				"INVENTORY_SERVER_PORT":              "7070",
				"INVENTORY_DATASET_LEGACY_ENCODING":  "windows-874",
				"INVENTORY_SECURITY_ALLOWED_ORIGINS": "http://a.test,http://b.test",
				"INVENTORY_TELEMETRY_ENABLE_TRACING": "true",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7070, cfg.Server.Port)
				assert.Equal(t, "windows-874", cfg.Dataset.LegacyEncoding)
				assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Security.AllowedOrigins)
				assert.True(t, cfg.Telemetry.EnableTracing)
			},
		},
		{
			name:    "invalid port",
			env:     map[string]string{"INVENTORY_SERVER_PORT": "70000"},
			wantErr: "invalid server port",
		},
		{
			name:    "multi character delimiter",
			env:     map[string]string{"INVENTORY_DATASET_DELIMITER": ";;"},
			wantErr: "delimiter",
		},
		{
			name:    "quote delimiter",
			file:    "dataset:\n  delimiter: '\"'\n",
			wantErr: "delimiter",
		},
		{
			name:    "negative header rows",
			env:     map[string]string{"INVENTORY_DATASET_HEADER_ROWS": "-1"},
			wantErr: "header rows",
		},
		{
			name:    "unknown legacy encoding",
			env:     map[string]string{"INVENTORY_DATASET_LEGACY_ENCODING": "shift-jis"},
			wantErr: "legacy encoding",
		},
		{
			name:    "sample ratio out of range",
			env:     map[string]string{"INVENTORY_TELEMETRY_SAMPLE_RATIO": "1.5"},
			wantErr: "sample ratio",
		},
		{
			name:    "unknown trace exporter",
			env:     map[string]string{"INVENTORY_TELEMETRY_TRACE_EXPORTER": "jaeger"},
			wantErr: "trace exporter",
		},
		{
			name:    "malformed env value",
			env:     map[string]string{"INVENTORY_SERVER_PORT": "not-a-number"},
			wantErr: "failed to load config from env",
		},
		{
			name:    "malformed file",
			file:    "server: [",
			wantErr: "failed to load config from file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := LoadFrom(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)

				var appErr *apperrors.AppError
				require.True(t, errors.As(err, &appErr))
				assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
				return
			}

			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoadFrom_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	_, err := LoadFrom(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperrors.ErrTypeConfig, appErr.Type)
	assert.Equal(t, path, appErr.Context["file"])
}

func TestGetConfigFilePath_Env(t *testing.T) {
	t.Setenv(ConfigFileEnv, "/etc/inventory/config.yaml")
	assert.Equal(t, "/etc/inventory/config.yaml", getConfigFilePath())
}

func TestValidate_NormalizesLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Format = "text"
	cfg.Logging.Output = "syslog"
	cfg.Logging.FilePath = ""

	require.NoError(t, cfg.validate())
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "console", cfg.Logging.Output)
	assert.Equal(t, DefaultLogFile, cfg.Logging.FilePath)
}

func TestValidate_CORSRequiresOrigins(t *testing.T) {
	cfg := Default()
	cfg.Security.AllowedOrigins = nil
	assert.Error(t, cfg.validate())

	cfg.Security.EnableCORS = false
	assert.NoError(t, cfg.validate())
}

func TestServerConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", Default().Server.Addr())
	assert.Equal(t, "127.0.0.1:9000", ServerConfig{Host: "127.0.0.1", Port: 9000}.Addr())
}

func TestDatasetConfig_DelimiterRune(t *testing.T) {
	assert.Equal(t, ',', DatasetConfig{Delimiter: ","}.DelimiterRune())
	assert.Equal(t, '\t', DatasetConfig{Delimiter: "\t"}.DelimiterRune())
	assert.Equal(t, ',', DatasetConfig{}.DelimiterRune())
}
