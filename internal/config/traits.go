// internal/config/traits.go
package config

import (
	"fmt"
	"os"
	"path"

	"github.com/pelletier/go-toml/v2"
)

// TraitConfig 描述石狗藏品的既定部位类别和标签词表
// 类别顺序即合成预览的图层叠放顺序（z-index），由配置给定，不由数据推导
type TraitConfig struct {
	// Categories 是封闭的部位类别集合，按叠放顺序排列
	Categories []string `toml:"categories"`

	// Tags 是藏品名称中可嵌入的单字符标签词表
	Tags []string `toml:"tags"`

	// AssetBase 是素材路径前缀，AssetExt 是素材扩展名
	AssetBase string `toml:"asset_base"`
	AssetExt  string `toml:"asset_ext"`
}

// DefaultTraitConfig 返回内置的石狗部位类别配置
// 从下到上：身体在最底层，装饰在最顶层
func DefaultTraitConfig() *TraitConfig {
	return &TraitConfig{
		Categories: []string{"身体", "头", "耳朵", "眼睛", "鼻子", "嘴巴", "装饰"},
		Tags:       []string{"守", "镇", "福", "祥", "灵", "威"},
		AssetBase:  "/static/images/traits",
		AssetExt:   ".png",
	}
}

// LoadTraitConfig 从TOML文件加载部位类别配置
// 文件不存在时使用内置默认值；文件存在但非法时返回错误
func LoadTraitConfig(filePath string) (*TraitConfig, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return DefaultTraitConfig(), nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("读取部位配置文件失败: %w", err)
	}

	cfg := DefaultTraitConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("解析部位配置文件失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate 在配置边界上校验类别集合的封闭性
func (tc *TraitConfig) Validate() error {
	if len(tc.Categories) == 0 {
		return fmt.Errorf("部位类别列表不能为空")
	}

	seen := make(map[string]bool, len(tc.Categories))
	for _, category := range tc.Categories {
		if category == "" {
			return fmt.Errorf("部位类别名称不能为空")
		}
		if seen[category] {
			return fmt.Errorf("部位类别重复: %s", category)
		}
		seen[category] = true
	}

	for _, tag := range tc.Tags {
		if len([]rune(tag)) != 1 {
			return fmt.Errorf("标签必须是单个字符: %q", tag)
		}
	}

	return nil
}

// IsRecognized 判断类别是否属于既定集合
func (tc *TraitConfig) IsRecognized(category string) bool {
	for _, c := range tc.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// ZIndex 返回类别的叠放序号，不在集合中时返回 -1
func (tc *TraitConfig) ZIndex(category string) int {
	for i, c := range tc.Categories {
		if c == category {
			return i
		}
	}
	return -1
}

// ResolveAssetPath 按约定 <base>/<category>/<value><ext> 推导素材路径
func (tc *TraitConfig) ResolveAssetPath(category, value string) string {
	return path.Join(tc.AssetBase, category, value+tc.AssetExt)
}
