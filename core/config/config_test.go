package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 64, cfg.Server.BodyLimitMB)
	assert.Equal(t, "reconcile", cfg.Storage.Bucket)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "比对规则", cfg.Compare.RuleSheet)
	assert.Equal(t, 4, cfg.Compare.CategoryPrefixWidth)
	assert.Equal(t, 300, cfg.Compare.CacheTTLSeconds)
	assert.False(t, cfg.Compare.Staging)
	assert.Equal(t, "FF0000", cfg.Compare.Report.Highlight)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	env := "COMPARE_CATEGORY_PREFIX_WIDTH=6\nCOMPARE_STAGING=true\nSERVER_PORT=9090\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Setenv("COMPARE_REPORT_KEY_LABEL", "资产编码")
	t.Cleanup(func() {
		os.Unsetenv("COMPARE_CATEGORY_PREFIX_WIDTH")
		os.Unsetenv("COMPARE_STAGING")
		os.Unsetenv("SERVER_PORT")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, 6, cfg.Compare.CategoryPrefixWidth)
	assert.True(t, cfg.Compare.Staging)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "资产编码", cfg.Compare.Report.KeyLabel)
}
