// internal/services/catalog_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCatalog 在临时目录中准备集合文件并创建服务
func newTestCatalog(t *testing.T, collectionJSON string) *CatalogService {
	t.Helper()

	tempDir := t.TempDir()
	if collectionJSON != "" {
		err := os.WriteFile(filepath.Join(tempDir, "collection.json"), []byte(collectionJSON), 0644)
		require.NoError(t, err)
	}

	fs, err := storage.NewFileStorage(tempDir)
	require.NoError(t, err)

	return NewCatalogService(fs, config.DefaultTraitConfig(), "collection.json")
}

const sampleCollection = `[
  {
    "name": "守石狗 #1",
    "description": "村口守护",
    "image": {"头": "/static/images/traits/头/昂首.png"},
    "attributes": [
      {"trait_type": "头", "value": "昂首"},
      {"trait_type": "眼睛", "value": "圆睁"}
    ]
  },
  {
    "name": "镇石狗 #2",
    "description": "镇水患",
    "image": {},
    "attributes": [
      {"trait_type": "头", "value": "低伏"}
    ]
  },
  {
    "name": "福守狗 #3",
    "description": "祈福",
    "image": {},
    "attributes": [
      {"trait_type": "头", "value": "昂首"},
      {"trait_type": "装饰", "value": "铜钱"}
    ]
  },
  {
    "name": "威石狗 #4",
    "description": "显威",
    "image": {},
    "attributes": []
  }
]`

func TestCatalogService_Load(t *testing.T) {
	catalog := newTestCatalog(t, sampleCollection)

	assert.False(t, catalog.Loaded())

	err := catalog.Load()
	require.NoError(t, err)

	assert.True(t, catalog.Loaded())
	assert.Equal(t, 4, catalog.Count())
}

func TestCatalogService_LoadMissingFileReturnsLoadError(t *testing.T) {
	catalog := newTestCatalog(t, "")

	err := catalog.Load()

	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
	assert.False(t, catalog.Loaded())
}

func TestCatalogService_LoadMalformedJSONReturnsLoadError(t *testing.T) {
	catalog := newTestCatalog(t, `{"not": "an array"`)

	err := catalog.Load()

	require.Error(t, err)
	assert.True(t, apperrors.IsLoadError(err))
}

func TestCatalogService_DuplicateNamesAreTolerated(t *testing.T) {
	catalog := newTestCatalog(t, `[
	  {"name": "守石狗 #1", "description": "", "image": {}, "attributes": []},
	  {"name": "守石狗 #1", "description": "", "image": {}, "attributes": []}
	]`)

	// 重复名称只告警，记录按原样保留
	err := catalog.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, catalog.Count())
}

func TestCatalogService_ItemsReturnsIsolatedSnapshot(t *testing.T) {
	catalog := newTestCatalog(t, sampleCollection)
	require.NoError(t, catalog.Load())

	before := catalog.Items()

	// 篡改快照不应影响后续读取
	snapshot := catalog.Items()
	snapshot[0].Name = "被篡改"
	snapshot[0].Attributes[0].Value = "被篡改"
	snapshot[0].Image["头"] = "被篡改"

	after := catalog.Items()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("篡改快照影响了集合 (-before +after):\n%s", diff)
	}
}

func TestCatalogService_FindItem(t *testing.T) {
	catalog := newTestCatalog(t, sampleCollection)
	require.NoError(t, catalog.Load())

	item, err := catalog.FindItem("镇石狗 #2")
	require.NoError(t, err)
	assert.Equal(t, "镇石狗 #2", item.Name)

	_, err = catalog.FindItem("不存在的石狗")
	require.Error(t, err)
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestCatalogService_EndToEndFilterScenario(t *testing.T) {
	catalog := newTestCatalog(t, sampleCollection)
	require.NoError(t, catalog.Load())

	items := catalog.Items()
	require.Len(t, items, 4)

	// 点选"守"标签
	selection := ToggleTag(nil, "守")
	visible := ApplyFilter(items, models.FilterCriteria{TagSelection: selection})
	assert.Equal(t, []string{"守石狗 #1", "福守狗 #3"}, itemNames(visible))

	// 再次点选取消，恢复完整集合且顺序不变
	selection = ToggleTag(selection, "守")
	restored := ApplyFilter(items, models.FilterCriteria{TagSelection: selection})
	assert.Equal(t, []string{"守石狗 #1", "镇石狗 #2", "福守狗 #3", "威石狗 #4"}, itemNames(restored))
}

func TestCatalogService_FilterDoesNotTouchStore(t *testing.T) {
	catalog := newTestCatalog(t, sampleCollection)
	require.NoError(t, catalog.Load())

	before := catalog.Items()

	ApplyFilter(catalog.Items(), models.FilterCriteria{
		TagSelection:       []string{"守"},
		AttributeSelection: map[string]string{"头": "昂首"},
	})

	if diff := cmp.Diff(before, catalog.Items()); diff != "" {
		t.Errorf("筛选触碰了集合本身 (-before +after):\n%s", diff)
	}
}
