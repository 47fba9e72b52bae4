// internal/services/compose_test.go
package services

import (
	"testing"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestComposeService(t *testing.T) *ComposeService {
	t.Helper()

	s := NewComposeService(config.DefaultTraitConfig())
	t.Cleanup(s.Stop)

	return s
}

func baseItem() models.Item {
	return makeItem("守石狗 #1", map[string]string{
		"身体": "玄武岩",
		"头":  "昂首",
		"眼睛": "圆睁",
	})
}

func TestComposeService_OpenSessionCopiesAttributes(t *testing.T) {
	s := newTestComposeService(t)

	session := s.OpenSession(baseItem())

	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "守石狗 #1", session.ItemName)
	assert.Equal(t, map[string]string{
		"身体": "玄武岩",
		"头":  "昂首",
		"眼睛": "圆睁",
	}, session.Overrides)
}

func TestComposeService_SetOverrideReplacesSingleCategory(t *testing.T) {
	s := newTestComposeService(t)
	session := s.OpenSession(baseItem())

	updated, err := s.SetOverride(session.ID, "头", "低伏")
	require.NoError(t, err)

	assert.Equal(t, "低伏", updated.Overrides["头"])
	// 其余部位保持不变
	assert.Equal(t, "玄武岩", updated.Overrides["身体"])
	assert.Equal(t, "圆睁", updated.Overrides["眼睛"])
}

func TestComposeService_OverrideDoesNotMutateItem(t *testing.T) {
	s := newTestComposeService(t)

	item := baseItem()
	before := item.Clone()

	session := s.OpenSession(item)
	_, err := s.SetOverride(session.ID, "头", "低伏")
	require.NoError(t, err)

	if diff := cmp.Diff(before, item); diff != "" {
		t.Errorf("换装修改了原始藏品 (-before +after):\n%s", diff)
	}
}

func TestComposeService_SessionsAreIsolated(t *testing.T) {
	s := newTestComposeService(t)

	first := s.OpenSession(baseItem())
	second := s.OpenSession(baseItem())

	_, err := s.SetOverride(first.ID, "头", "低伏")
	require.NoError(t, err)

	untouched, err := s.GetSession(second.ID)
	require.NoError(t, err)
	assert.Equal(t, "昂首", untouched.Overrides["头"])
}

func TestComposeService_SetOverrideRejectsUnknownCategory(t *testing.T) {
	s := newTestComposeService(t)
	session := s.OpenSession(baseItem())

	_, err := s.SetOverride(session.ID, "尾巴", "卷尾")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestComposeService_SetOverrideRejectsEmptyValue(t *testing.T) {
	s := newTestComposeService(t)
	session := s.OpenSession(baseItem())

	_, err := s.SetOverride(session.ID, "头", "")

	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

func TestComposeService_UnknownSessionReturnsNotFound(t *testing.T) {
	s := newTestComposeService(t)

	_, err := s.GetSession("不存在")
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = s.SetOverride("不存在", "头", "昂首")
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestComposeService_LayersFollowConfiguredOrder(t *testing.T) {
	s := newTestComposeService(t)

	// 属性声明顺序与类别叠放顺序不同
	item := models.Item{
		Name: "守石狗 #1",
		Attributes: []models.Attribute{
			{TraitType: "装饰", Value: "铜钱"},
			{TraitType: "身体", Value: "玄武岩"},
			{TraitType: "头", Value: "昂首"},
		},
	}

	session := s.OpenSession(item)
	layers, err := s.Layers(session.ID)
	require.NoError(t, err)

	require.Len(t, layers, 3)
	assert.Equal(t, "身体", layers[0].Category)
	assert.Equal(t, "头", layers[1].Category)
	assert.Equal(t, "装饰", layers[2].Category)
	assert.Equal(t, "/static/images/traits/身体/玄武岩.png", layers[0].AssetPath)
}

func TestComposeService_LayersSkipUnrecognizedCategories(t *testing.T) {
	s := newTestComposeService(t)

	item := models.Item{
		Name: "守石狗 #1",
		Attributes: []models.Attribute{
			{TraitType: "身体", Value: "玄武岩"},
			{TraitType: "尾巴", Value: "卷尾"},
		},
	}

	session := s.OpenSession(item)
	layers, err := s.Layers(session.ID)
	require.NoError(t, err)

	require.Len(t, layers, 1)
	assert.Equal(t, "身体", layers[0].Category)
}

func TestComposeService_CloseSessionDiscardsState(t *testing.T) {
	s := newTestComposeService(t)
	session := s.OpenSession(baseItem())

	s.CloseSession(session.ID)

	_, err := s.GetSession(session.ID)
	assert.True(t, apperrors.IsNotFoundError(err))
	assert.Equal(t, 0, s.SessionCount())
}

func TestComposeService_SweepRemovesIdleSessions(t *testing.T) {
	s := newTestComposeService(t)
	s.idleTTL = 10 * time.Millisecond

	s.OpenSession(baseItem())
	fresh := s.OpenSession(baseItem())

	time.Sleep(20 * time.Millisecond)

	// 保持第二个会话活跃
	_, err := s.SetOverride(fresh.ID, "头", "低伏")
	require.NoError(t, err)

	s.sweepIdleSessions()

	assert.Equal(t, 1, s.SessionCount())
	_, err = s.GetSession(fresh.ID)
	assert.NoError(t, err)
}
