package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"WARN", true}, // case insensitive
		{"verbose", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptySoundPathAllowed(t *testing.T) {
	cfg := validConfig()
	cfg.Library.SoundPath = ""
	assert.NoError(t, cfg.Validate())
}

func TestGetConfigValue_Precedence(t *testing.T) {
	const key = "SOUNDVAULT_TEST_VALUE"
	t.Setenv(key, "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", key, "default"))
	assert.Equal(t, "from-env", getConfigValue("", key, "default"))

	require.NoError(t, os.Unsetenv(key))
	assert.Equal(t, "default", getConfigValue("", key, "default"))
}

func TestGetBoolConfigValue(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"anything", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, getBoolConfigValue(tt.value, "SOUNDVAULT_TEST_UNSET", false), "value %q", tt.value)
	}

	assert.True(t, getBoolConfigValue("", "SOUNDVAULT_TEST_UNSET", true), "default applies when nothing is set")
}

func TestGetInt64ConfigValue(t *testing.T) {
	const key = "SOUNDVAULT_TEST_INT"
	t.Setenv(key, "1048576")
	assert.Equal(t, int64(1048576), getInt64ConfigValue("", key, 42))

	t.Setenv(key, "not a number")
	assert.Equal(t, int64(42), getInt64ConfigValue("", key, 42))
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/SoundVault/sounds", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "SoundVault", "sounds"), got)

	got, err = expandPath("", "/default/path")
	require.NoError(t, err)
	assert.Equal(t, "/default/path", got)

	got, err = expandPath("/abs/path", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/abs/path", got)
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envPath, []byte(
		"# comment\n"+
			"SOUNDVAULT_TEST_FILE_A=hello\n"+
			"SOUNDVAULT_TEST_FILE_B=\"quoted\"\n"+
			"\n",
	), 0o644))

	t.Setenv("SOUNDVAULT_TEST_FILE_A", "")
	require.NoError(t, os.Unsetenv("SOUNDVAULT_TEST_FILE_A"))
	t.Setenv("SOUNDVAULT_TEST_FILE_B", "")
	require.NoError(t, os.Unsetenv("SOUNDVAULT_TEST_FILE_B"))

	require.NoError(t, loadEnvFile(envPath))
	assert.Equal(t, "hello", os.Getenv("SOUNDVAULT_TEST_FILE_A"))
	assert.Equal(t, "quoted", os.Getenv("SOUNDVAULT_TEST_FILE_B"))
}
