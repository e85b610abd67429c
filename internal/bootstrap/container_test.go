package bootstrap

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jorge-barreto/augmentor/internal/config"
	"github.com/jorge-barreto/augmentor/internal/logging"
	"github.com/jorge-barreto/augmentor/internal/state"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{}
	cfg.History.Path = filepath.Join(dir, "augmentor.db")
	cfg.Pipeline.ArtifactsDir = filepath.Join(dir, "debug_output")
	cfg.Pipeline.MaxPasses = 7
	require.NoError(t, config.Validate(cfg))
	return cfg
}

func TestNewContainer_Wiring(t *testing.T) {
	c, err := NewContainer(testConfig(t), logging.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.LLM)
	assert.NotNil(t, c.Search)
	assert.NotNil(t, c.History)
	assert.Equal(t, config.DefaultModel, c.Models().Planner)

	r := c.NewRunner("run-1", c.Models())
	assert.Equal(t, filepath.Join(c.Config.Pipeline.ArtifactsDir, "run-1"), r.RunDir)
	assert.Equal(t, 7, r.MaxPasses)
	assert.Len(t, r.Stages, 4)
	assert.NotNil(t, r.History)
}

func TestNewContainer_HistoryDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Disabled = true
	c, err := NewContainer(cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.History)
	assert.Nil(t, c.NewRunner("r", c.Models()).History)
}

func TestNewContainer_UnknownProvider(t *testing.T) {
	cfg := testConfig(t)
	cfg.LLM.Provider = "mystery"
	_, err := NewContainer(cfg, nil)
	assert.Error(t, err)
}

func TestNewRunID(t *testing.T) {
	id := NewRunID()
	assert.Regexp(t, regexp.MustCompile(`^\d{8}-\d{6}-[0-9a-f]{8}$`), id)
	assert.NotEqual(t, id, NewRunID())
}

func TestContainerRun_Cancelled(t *testing.T) {
	c, err := NewContainer(testConfig(t), logging.Nop())
	require.NoError(t, err)
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	st := c.Run(ctx, "explain qubits", nil, c.Models())

	require.True(t, st.Failed())
	assert.Contains(t, st.ErrorText(), "run interrupted")
	assert.Nil(t, st.FinalOutput)

	latest, err := state.LatestRun(c.Config.Pipeline.ArtifactsDir)
	require.NoError(t, err)
	rec, err := state.Load(c.RunDir(latest))
	require.NoError(t, err)
	assert.Equal(t, state.StatusInterrupted, rec.Status)
}
