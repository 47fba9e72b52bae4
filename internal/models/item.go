// internal/models/item.go
package models

// Attribute 表示藏品在某个部位类别上的一次取值
// 顺序跟随藏品数据文件中的声明顺序（用于图层叠放，不影响筛选）
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Item 表示一件石狗藏品记录
// Name 中按惯例嵌入一个来自固定词表的标签字符和数字编号（如 "守石狗 #7"）
// Image 按部位类别映射到素材路径，没有该部位的类别不出现在映射中
type Item struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Image       map[string]string `json:"image"`
	Attributes  []Attribute       `json:"attributes"`
}

// AttributeValue 返回指定部位类别上的取值
func (item *Item) AttributeValue(category string) (string, bool) {
	for _, attr := range item.Attributes {
		if attr.TraitType == category {
			return attr.Value, true
		}
	}
	return "", false
}

// Clone 返回藏品的深拷贝，调用方可以安全修改返回值
func (item *Item) Clone() Item {
	copied := Item{
		Name:        item.Name,
		Description: item.Description,
	}

	if item.Image != nil {
		copied.Image = make(map[string]string, len(item.Image))
		for category, path := range item.Image {
			copied.Image[category] = path
		}
	}

	if item.Attributes != nil {
		copied.Attributes = make([]Attribute, len(item.Attributes))
		copy(copied.Attributes, item.Attributes)
	}

	return copied
}
