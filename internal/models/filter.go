// internal/models/filter.go
package models

// FilterCriteria 表示图鉴页当前的筛选条件
// TagSelection 保持插入顺序以便界面稳定渲染，语义上是集合
// AttributeSelection 中值为空字符串的条目视为未激活
type FilterCriteria struct {
	TagSelection       []string          `json:"tag_selection"`
	AttributeSelection map[string]string `json:"attribute_selection"`
}

// IsEmpty 判断是否没有任何激活的筛选条件
func (c *FilterCriteria) IsEmpty() bool {
	if len(c.TagSelection) > 0 {
		return false
	}
	for _, value := range c.AttributeSelection {
		if value != "" {
			return false
		}
	}
	return true
}
