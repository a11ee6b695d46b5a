package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := EmptyTuningConfig()
	assert.Equal(t, 5*time.Second, cfg.GetTickPeriod())
	assert.Equal(t, 30*time.Second, cfg.GetGoalAcceptTimeout())
	assert.Equal(t, time.Duration(0), cfg.GetGoalResultTimeout())
	assert.Equal(t, ":8080", cfg.GetListenAddr())
	assert.Equal(t, "exploration.db", cfg.GetDBPath())
	assert.Equal(t, "", cfg.GetPlotDir())
}

func TestLoadTuningConfig(t *testing.T) {
	t.Parallel()

	t.Run("partial config keeps defaults", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{"tick_period": "250ms"}`)
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.GetTickPeriod())
		assert.Equal(t, ":8080", cfg.GetListenAddr())
	})

	t.Run("full config", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{
			"tick_period": "1s",
			"goal_accept_timeout": "5s",
			"goal_result_timeout": "2m",
			"listen_addr": ":9000",
			"db_path": "",
			"plot_dir": "plots"
		}`)
		cfg, err := LoadTuningConfig(path)
		require.NoError(t, err)
		assert.Equal(t, time.Second, cfg.GetTickPeriod())
		assert.Equal(t, 5*time.Second, cfg.GetGoalAcceptTimeout())
		assert.Equal(t, 2*time.Minute, cfg.GetGoalResultTimeout())
		assert.Equal(t, ":9000", cfg.GetListenAddr())
		assert.Equal(t, "", cfg.GetDBPath(), "empty db_path disables recording")
		assert.Equal(t, "plots", cfg.GetPlotDir())
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "tuning.yaml")
		require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{"tick_period": "fast"}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("rejects zero tick period", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `{"tick_period": "0s"}`)
		_, err := LoadTuningConfig(path)
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadTuningConfig(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})
}
