package ext_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/langweave/glyph/internal/ext"
)

func TestLoadConfig_MissingFileReturnsDefault(t *testing.T) {
	cfg, err := ext.LoadConfig(filepath.Join(t.TempDir(), "glyph.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "vm", cfg.Backend)
	assert.Empty(t, cfg.Preload)
}

func TestParseConfig_PreloadAndBackend(t *testing.T) {
	cfg, err := ext.ParseConfig([]byte("backend: tree-walk\npreload: [grpc, db]\ndebug_alloc: true\n"), "glyph.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tree-walk", cfg.Backend)
	assert.Equal(t, []string{"grpc", "db"}, cfg.Preload)
	assert.True(t, cfg.DebugAlloc)
}

func TestParseConfig_RejectsUnknownBackend(t *testing.T) {
	_, err := ext.ParseConfig([]byte("backend: quantum\n"), "glyph.yaml")
	require.Error(t, err)
}
