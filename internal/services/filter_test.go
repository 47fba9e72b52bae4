// internal/services/filter_test.go
package services

import (
	"testing"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// makeItem 构造测试藏品
func makeItem(name string, attrs map[string]string) models.Item {
	item := models.Item{
		Name:  name,
		Image: make(map[string]string),
	}
	for category, value := range attrs {
		item.Attributes = append(item.Attributes, models.Attribute{
			TraitType: category,
			Value:     value,
		})
	}
	return item
}

func itemNames(items []models.Item) []string {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names
}

func TestApplyFilter_EmptyCriteriaReturnsAll(t *testing.T) {
	items := []models.Item{
		makeItem("守石狗 #1", nil),
		makeItem("镇石狗 #2", nil),
	}

	visible := ApplyFilter(items, models.FilterCriteria{})

	assert.Equal(t, []string{"守石狗 #1", "镇石狗 #2"}, itemNames(visible))
}

func TestApplyFilter_TagsAreORSemantics(t *testing.T) {
	items := []models.Item{
		makeItem("AB #1", nil),
		makeItem("CD #2", nil),
		makeItem("AC #3", nil),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		TagSelection: []string{"A", "D"},
	})

	// #1 和 #3 包含 A，#2 包含 D，三件全部命中
	assert.Equal(t, []string{"AB #1", "CD #2", "AC #3"}, itemNames(visible))
}

func TestApplyFilter_TagExcludesNonMatching(t *testing.T) {
	items := []models.Item{
		makeItem("守石狗 #1", nil),
		makeItem("镇石狗 #2", nil),
		makeItem("福守狗 #3", nil),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		TagSelection: []string{"守"},
	})

	assert.Equal(t, []string{"守石狗 #1", "福守狗 #3"}, itemNames(visible))
}

func TestApplyFilter_AttributesAreANDSemantics(t *testing.T) {
	items := []models.Item{
		makeItem("甲", map[string]string{"头": "X", "鼻子": "Y"}),
		makeItem("乙", map[string]string{"头": "X", "鼻子": "Z"}),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		AttributeSelection: map[string]string{"头": "X", "鼻子": "Y"},
	})

	assert.Equal(t, []string{"甲"}, itemNames(visible))
}

func TestApplyFilter_EmptyAttributeValueIsInactive(t *testing.T) {
	items := []models.Item{
		makeItem("甲", map[string]string{"头": "X"}),
		makeItem("乙", map[string]string{"头": "Y"}),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		AttributeSelection: map[string]string{"头": "", "鼻子": ""},
	})

	assert.Len(t, visible, 2)
}

func TestApplyFilter_MissingCategorySimplyDoesNotMatch(t *testing.T) {
	items := []models.Item{
		makeItem("甲", map[string]string{"头": "X"}),
		makeItem("乙", nil),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		AttributeSelection: map[string]string{"装饰": "铜钱"},
	})

	assert.Empty(t, visible)
}

func TestApplyFilter_CombinedPredicateMustBothHold(t *testing.T) {
	items := []models.Item{
		makeItem("守石狗 #1", map[string]string{"头": "圆头"}),
		makeItem("守石狗 #2", map[string]string{"头": "方头"}),
		makeItem("镇石狗 #3", map[string]string{"头": "圆头"}),
	}

	visible := ApplyFilter(items, models.FilterCriteria{
		TagSelection:       []string{"守"},
		AttributeSelection: map[string]string{"头": "圆头"},
	})

	assert.Equal(t, []string{"守石狗 #1"}, itemNames(visible))
}

func TestApplyFilter_DoesNotMutateInput(t *testing.T) {
	items := []models.Item{
		makeItem("守石狗 #1", map[string]string{"头": "圆头"}),
		makeItem("镇石狗 #2", map[string]string{"头": "方头"}),
	}

	before := make([]models.Item, len(items))
	for i := range items {
		before[i] = items[i].Clone()
	}

	ApplyFilter(items, models.FilterCriteria{
		TagSelection:       []string{"守"},
		AttributeSelection: map[string]string{"头": "圆头"},
	})

	if diff := cmp.Diff(before, items); diff != "" {
		t.Errorf("筛选修改了输入 (-before +after):\n%s", diff)
	}
}

func TestApplyFilter_IsDeterministic(t *testing.T) {
	items := []models.Item{
		makeItem("守石狗 #1", map[string]string{"头": "圆头"}),
		makeItem("镇石狗 #2", map[string]string{"头": "方头"}),
		makeItem("守石狗 #3", map[string]string{"头": "圆头"}),
	}
	criteria := models.FilterCriteria{TagSelection: []string{"守"}}

	first := ApplyFilter(items, criteria)
	second := ApplyFilter(items, criteria)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("相同输入产生了不同结果:\n%s", diff)
	}
}

func TestToggleTag(t *testing.T) {
	// 未选中则加入
	assert.Equal(t, []string{"A"}, ToggleTag(nil, "A"))

	// 已选中则移除
	assert.Equal(t, []string{}, ToggleTag([]string{"A"}, "A"))

	// 保持插入顺序
	assert.Equal(t, []string{"A", "B"}, ToggleTag([]string{"A"}, "B"))
	assert.Equal(t, []string{"A", "C"}, ToggleTag([]string{"A", "B", "C"}, "B"))
}

func TestToggleTag_DoesNotMutateInput(t *testing.T) {
	selection := []string{"A", "B"}

	ToggleTag(selection, "A")
	ToggleTag(selection, "C")

	assert.Equal(t, []string{"A", "B"}, selection)
}

func TestToggleTag_TwiceRestoresSelection(t *testing.T) {
	selection := []string{"守", "福"}

	once := ToggleTag(selection, "镇")
	twice := ToggleTag(once, "镇")

	assert.Equal(t, []string{"守", "福"}, twice)
}

func TestDistinctValues_DeduplicatesInFirstSeenOrder(t *testing.T) {
	items := []models.Item{
		makeItem("甲", map[string]string{"头": "圆头"}),
		makeItem("乙", map[string]string{"头": "圆头"}),
		makeItem("丙", map[string]string{"头": "方头"}),
		makeItem("丁", map[string]string{"头": "圆头"}),
	}

	values := DistinctValues(items, "头")

	assert.Equal(t, []string{"圆头", "方头"}, values)
}

func TestDistinctValues_AbsentCategoryReturnsEmpty(t *testing.T) {
	items := []models.Item{
		makeItem("甲", map[string]string{"头": "圆头"}),
	}

	values := DistinctValues(items, "装饰")

	assert.NotNil(t, values)
	assert.Empty(t, values)
}

func TestFilterCriteria_IsEmpty(t *testing.T) {
	empty := models.FilterCriteria{
		AttributeSelection: map[string]string{"头": ""},
	}
	assert.True(t, empty.IsEmpty())

	withTag := models.FilterCriteria{TagSelection: []string{"守"}}
	assert.False(t, withTag.IsEmpty())

	withAttr := models.FilterCriteria{
		AttributeSelection: map[string]string{"头": "圆头"},
	}
	assert.False(t, withAttr.IsEmpty())
}
