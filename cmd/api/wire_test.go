package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/ip-inspection/internal/config"
	"github.com/bryanwahyu/ip-inspection/internal/infra/ai/dashscope"
	aiopenai "github.com/bryanwahyu/ip-inspection/internal/infra/ai/openai"
)

func loadEmpty(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("AI_API_KEY", "")
	t.Setenv("QWEN_API_KEY", "")
	t.Setenv("DB_HOST", "")
	t.Setenv("MINIO_ENDPOINT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("AI_PROVIDER", "")
	cfg, err := config.Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	return cfg
}

func TestNewCompleter(t *testing.T) {
	cfg := loadEmpty(t)

	c, err := newCompleter(cfg)
	require.NoError(t, err)
	assert.Nil(t, c)

	cfg.AI.APIKey = "k"
	c, err = newCompleter(cfg)
	require.NoError(t, err)
	assert.IsType(t, &dashscope.Client{}, c)

	cfg.AI.Provider = "openai"
	c, err = newCompleter(cfg)
	require.NoError(t, err)
	assert.IsType(t, &aiopenai.Client{}, c)

	cfg.AI.Provider = "nope"
	_, err = newCompleter(cfg)
	assert.Error(t, err)
}

func TestBuild_NoBackends(t *testing.T) {
	cfg := loadEmpty(t)

	a, err := build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.svc.Scorer)
	assert.Nil(t, a.svc.Records)
	assert.Nil(t, a.svc.Archive)
	assert.Nil(t, a.svc.Events)
	assert.Empty(t, a.checkers)
	assert.Equal(t, "Shenzhen", a.svc.Regions.Resolve("10.162.1.1").Label)
}

func TestBuild_UnknownDriver(t *testing.T) {
	cfg := loadEmpty(t)
	cfg.Database.Host = "db"
	cfg.Database.Driver = "sqlite"

	_, err := build(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown database driver")
}
