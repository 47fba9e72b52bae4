// internal/models/compose.go
package models

import "time"

// ComposeSession 表示一次"换装"预览会话
// Overrides 从选中藏品自身的属性初始化，之后的修改只作用于会话本身，
// 绝不回写藏品集合
type ComposeSession struct {
	ID         string            `json:"id"`
	ItemName   string            `json:"item_name"`
	Overrides  map[string]string `json:"overrides"`
	CreatedAt  time.Time         `json:"created_at"`
	LastActive time.Time         `json:"last_active"`
}

// Clone 返回会话的深拷贝
func (s *ComposeSession) Clone() ComposeSession {
	copied := *s
	copied.Overrides = make(map[string]string, len(s.Overrides))
	for category, value := range s.Overrides {
		copied.Overrides[category] = value
	}
	return copied
}

// ComposeLayer 表示合成预览中的一个图层
// ZIndex 由既定部位类别的顺序决定
type ComposeLayer struct {
	Category  string `json:"category"`
	Value     string `json:"value"`
	AssetPath string `json:"asset_path"`
	ZIndex    int    `json:"z_index"`
}
