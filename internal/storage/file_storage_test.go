// internal/storage/file_storage_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *FileStorage {
	t.Helper()

	fs, err := NewFileStorage(t.TempDir())
	require.NoError(t, err)

	return fs
}

func TestFileStorage_SaveAndLoadJSON(t *testing.T) {
	fs := newTestStorage(t)

	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	saved := record{Name: "守石狗 #1", Count: 7}
	require.NoError(t, fs.SaveJSONFile("wishes", "test.json", saved))

	var loaded record
	require.NoError(t, fs.LoadJSONFile("wishes", "test.json", &loaded))

	assert.Equal(t, saved, loaded)
}

func TestFileStorage_LoadMissingFileFails(t *testing.T) {
	fs := newTestStorage(t)

	var out map[string]string
	err := fs.LoadJSONFile("", "missing.json", &out)

	assert.Error(t, err)
}

func TestFileStorage_FileExists(t *testing.T) {
	fs := newTestStorage(t)

	assert.False(t, fs.FileExists("stats", "usage.json"))

	require.NoError(t, fs.SaveJSONFile("stats", "usage.json", map[string]int{"total": 1}))
	assert.True(t, fs.FileExists("stats", "usage.json"))
}

func TestFileStorage_InvalidateFileDropsCache(t *testing.T) {
	fs := newTestStorage(t)

	require.NoError(t, fs.SaveTextFile("", "collection.json", []byte(`["old"]`)))

	var first []string
	require.NoError(t, fs.LoadJSONFile("", "collection.json", &first))
	assert.Equal(t, []string{"old"}, first)

	// 绕过存储层直接改写文件，模拟外部编辑
	fullPath := fs.FullPath("", "collection.json")
	require.NoError(t, os.WriteFile(fullPath, []byte(`["new"]`), 0644))

	fs.InvalidateFile("", "collection.json")

	var second []string
	require.NoError(t, fs.LoadJSONFile("", "collection.json", &second))
	assert.Equal(t, []string{"new"}, second)
}

func TestFileStorage_FullPath(t *testing.T) {
	fs := newTestStorage(t)

	assert.Equal(t, filepath.Join(fs.BaseDir, "wishes", "wishes.json"), fs.FullPath("wishes", "wishes.json"))
	assert.Equal(t, filepath.Join(fs.BaseDir, "collection.json"), fs.FullPath("", "collection.json"))
}
