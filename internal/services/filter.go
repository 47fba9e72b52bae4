// internal/services/filter.go
package services

import (
	"strings"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
)

// 图鉴筛选引擎：对内存中的藏品序列做纯函数计算，
// 不修改输入，相同输入必定产生相同输出

// ApplyFilter 计算当前筛选条件下可见的藏品子集
// 标签之间是"或"关系（名称包含任一选中标签即可），
// 部位约束之间是"与"关系（每个激活的约束都必须精确匹配），
// 两组条件再以"与"组合；输出保持输入的相对顺序
func ApplyFilter(items []models.Item, criteria models.FilterCriteria) []models.Item {
	visible := make([]models.Item, 0, len(items))

	for _, item := range items {
		if !matchesTags(&item, criteria.TagSelection) {
			continue
		}
		if !matchesAttributes(&item, criteria.AttributeSelection) {
			continue
		}
		visible = append(visible, item)
	}

	return visible
}

// matchesTags 标签选择为空时恒为真
func matchesTags(item *models.Item, tags []string) bool {
	if len(tags) == 0 {
		return true
	}

	for _, tag := range tags {
		if strings.Contains(item.Name, tag) {
			return true
		}
	}
	return false
}

// matchesAttributes 跳过值为空的未激活约束；
// 约束引用了藏品没有的类别时自然不匹配，这不是错误
func matchesAttributes(item *models.Item, constraints map[string]string) bool {
	for category, want := range constraints {
		if want == "" {
			continue
		}

		value, ok := item.AttributeValue(category)
		if !ok || value != want {
			return false
		}
	}
	return true
}

// ToggleTag 对选中标签做对称差：已选中则移除，未选中则加入
// 返回新切片，保持插入顺序，不修改传入的选择
func ToggleTag(selection []string, tag string) []string {
	for i, t := range selection {
		if t == tag {
			result := make([]string, 0, len(selection)-1)
			result = append(result, selection[:i]...)
			result = append(result, selection[i+1:]...)
			return result
		}
	}

	result := make([]string, 0, len(selection)+1)
	result = append(result, selection...)
	result = append(result, tag)
	return result
}

// DistinctValues 收集某个部位类别在全部藏品上出现过的取值，
// 按首次出现顺序去重；没有该类别时返回空切片
func DistinctValues(items []models.Item, category string) []string {
	seen := make(map[string]bool)
	values := make([]string, 0)

	for _, item := range items {
		for _, attr := range item.Attributes {
			if attr.TraitType != category {
				continue
			}
			if !seen[attr.Value] {
				seen[attr.Value] = true
				values = append(values, attr.Value)
			}
		}
	}

	return values
}
