package cmd

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "gooze.dev/pkg/jsgooze/internal/model"
)

func TestConfigConstants(t *testing.T) {
	assert.Equal(t, "jsgooze", configBaseName)
	assert.Equal(t, "jsgooze.yaml", configFileName)
	assert.Equal(t, "run.parallel", runParallelConfigKey)
	assert.Equal(t, "paths.exclude", excludeConfigKey)
	assert.Equal(t, "mutator.excluded_expressions", excludedExprKey)
	assert.Equal(t, ".jsgooze-reports", defaultReportsDir)
	assert.Equal(t, "JSGOOZE", envPrefix)
}

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	assert.Equal(t, currentConfigVersion, v.GetInt(configVersionKey))
	assert.Equal(t, defaultReportsDir, v.GetString(outputFlagName))
	assert.Equal(t, []string{"node", "--test", "--test-reporter=tap"}, v.GetStringSlice(testCommandKey))
	assert.Equal(t, defaultExcludedExpressions, v.GetStringSlice(excludedExprKey))
	assert.Len(t, v.GetStringSlice(operatorsKey), len(m.AllMutationTypes))
	assert.Contains(t, v.GetStringSlice(pluginsKey), "jsx")
}

func TestParseMutationTypes(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []m.MutationType
		wantErr bool
	}{
		{"empty", nil, []m.MutationType{}, false},
		{"case and space insensitive", []string{" Arithmetic", "logical "}, []m.MutationType{m.MutationArithmetic, m.MutationLogical}, false},
		{"blank entries skipped", []string{"", "string"}, []m.MutationType{m.MutationString}, false},
		{"unknown rejected", []string{"branch"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMutationTypes(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSlogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"-4", slog.LevelDebug},
		{"nonsense", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseSlogLevel(tt.in, slog.LevelInfo))
		})
	}
}

func TestMutationTimeout(t *testing.T) {
	original := viper.Get(mutationTimeoutKey)
	t.Cleanup(func() { viper.Set(mutationTimeoutKey, original) })

	viper.Set(mutationTimeoutKey, 5)
	assert.Equal(t, 5*time.Second, mutationTimeout())

	viper.Set(mutationTimeoutKey, 0)
	assert.Equal(t, defaultMutationTimeout, mutationTimeout())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("JSGOOZE_DOTENV_PROBE=from-file\n"), 0o600))

	t.Cleanup(func() { _ = os.Unsetenv("JSGOOZE_DOTENV_PROBE") })

	loadDotEnv(path)
	assert.Equal(t, "from-file", os.Getenv("JSGOOZE_DOTENV_PROBE"))

	// Missing files are ignored.
	loadDotEnv(filepath.Join(t.TempDir(), "missing.env"))
}
