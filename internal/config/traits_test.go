// internal/config/traits_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTraitConfig(t *testing.T) {
	cfg := DefaultTraitConfig()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"身体", "头", "耳朵", "眼睛", "鼻子", "嘴巴", "装饰"}, cfg.Categories)
	assert.Equal(t, []string{"守", "镇", "福", "祥", "灵", "威"}, cfg.Tags)
}

func TestLoadTraitConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadTraitConfig(filepath.Join(t.TempDir(), "traits.toml"))

	require.NoError(t, err)
	assert.Equal(t, DefaultTraitConfig().Categories, cfg.Categories)
}

func TestLoadTraitConfig_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traits.toml")
	content := `
categories = ["身体", "头"]
tags = ["守"]
asset_base = "/assets"
asset_ext = ".webp"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadTraitConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"身体", "头"}, cfg.Categories)
	assert.Equal(t, []string{"守"}, cfg.Tags)
	assert.Equal(t, "/assets/头/昂首.webp", cfg.ResolveAssetPath("头", "昂首"))
}

func TestLoadTraitConfig_InvalidFileIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traits.toml")
	require.NoError(t, os.WriteFile(path, []byte(`categories = []`), 0644))

	_, err := LoadTraitConfig(path)
	assert.Error(t, err)
}

func TestTraitConfig_ValidateRejectsDuplicates(t *testing.T) {
	cfg := &TraitConfig{Categories: []string{"头", "头"}}
	assert.Error(t, cfg.Validate())
}

func TestTraitConfig_ValidateRejectsMultiRuneTags(t *testing.T) {
	cfg := &TraitConfig{
		Categories: []string{"头"},
		Tags:       []string{"守护"},
	}
	assert.Error(t, cfg.Validate())
}

func TestTraitConfig_IsRecognized(t *testing.T) {
	cfg := DefaultTraitConfig()

	assert.True(t, cfg.IsRecognized("头"))
	assert.True(t, cfg.IsRecognized("装饰"))
	assert.False(t, cfg.IsRecognized("尾巴"))
	assert.False(t, cfg.IsRecognized(""))
}

func TestTraitConfig_ZIndexFollowsDeclarationOrder(t *testing.T) {
	cfg := DefaultTraitConfig()

	assert.Equal(t, 0, cfg.ZIndex("身体"))
	assert.Equal(t, 6, cfg.ZIndex("装饰"))
	assert.Equal(t, -1, cfg.ZIndex("尾巴"))
}

func TestTraitConfig_ResolveAssetPath(t *testing.T) {
	cfg := DefaultTraitConfig()

	assert.Equal(t, "/static/images/traits/头/昂首.png", cfg.ResolveAssetPath("头", "昂首"))
}
