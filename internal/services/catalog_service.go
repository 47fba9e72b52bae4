// internal/services/catalog_service.go
package services

import (
	"fmt"
	"log"
	"sync"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/storage"
	"github.com/fsnotify/fsnotify"
)

// CatalogService 持有整个会话期间的藏品集合
// 加载成功后集合只读；对外只暴露快照副本，调用方无法改动内部数据
type CatalogService struct {
	storage        *storage.FileStorage
	traits         *config.TraitConfig
	collectionFile string

	mu     sync.RWMutex
	items  []models.Item
	loaded bool

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewCatalogService 创建藏品集合服务
func NewCatalogService(fs *storage.FileStorage, traits *config.TraitConfig, collectionFile string) *CatalogService {
	return &CatalogService{
		storage:        fs,
		traits:         traits,
		collectionFile: collectionFile,
		done:           make(chan struct{}),
	}
}

// Load 从集合文件加载全部藏品记录
// 拉取或解析失败时返回 load_error；不自动重试，调用方可手动重载
func (s *CatalogService) Load() error {
	var items []models.Item
	if err := s.storage.LoadJSONFile("", s.collectionFile, &items); err != nil {
		return apperrors.NewLoadError("加载藏品集合失败", err)
	}

	s.inspectCollection(items)

	s.mu.Lock()
	s.items = items
	s.loaded = true
	s.mu.Unlock()

	log.Printf("✅ 藏品集合加载完成，共 %d 件", len(items))
	return nil
}

// inspectCollection 在加载边界上检查数据质量
// 名称重复和素材路径偏离约定都只告警，按原样保留记录
func (s *CatalogService) inspectCollection(items []models.Item) {
	seen := make(map[string]bool, len(items))

	for i := range items {
		item := &items[i]

		if seen[item.Name] {
			log.Printf("⚠️ 藏品名称重复: %s", item.Name)
		}
		seen[item.Name] = true

		for _, attr := range item.Attributes {
			if !s.traits.IsRecognized(attr.TraitType) {
				continue
			}
			expected := s.traits.ResolveAssetPath(attr.TraitType, attr.Value)
			if actual, ok := item.Image[attr.TraitType]; ok && actual != expected {
				log.Printf("⚠️ 藏品 %s 的 %s 素材路径偏离约定: %s (期望 %s)",
					item.Name, attr.TraitType, actual, expected)
			}
		}
	}
}

// Items 返回当前快照的副本
// 未加载时返回空切片，由调用方在筛选前检查 Loaded
func (s *CatalogService) Items() []models.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make([]models.Item, len(s.items))
	for i := range s.items {
		snapshot[i] = s.items[i].Clone()
	}
	return snapshot
}

// Loaded 报告集合是否已成功加载
func (s *CatalogService) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Count 返回藏品总数
func (s *CatalogService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// FindItem 按名称查找藏品，返回副本
func (s *CatalogService) FindItem(name string) (models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := range s.items {
		if s.items[i].Name == name {
			return s.items[i].Clone(), nil
		}
	}

	return models.Item{}, apperrors.NewNotFoundError(fmt.Sprintf("藏品不存在: %s", name), nil)
}

// Watch 监听集合文件变化并自动重载
// 每次重载换入一个全新的快照，已发出的旧快照不受影响
func (s *CatalogService) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("创建文件监听失败: %w", err)
	}

	fullPath := s.storage.FullPath("", s.collectionFile)
	if err := watcher.Add(fullPath); err != nil {
		watcher.Close()
		return fmt.Errorf("监听集合文件失败: %w", err)
	}

	s.watcher = watcher

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					s.storage.InvalidateFile("", s.collectionFile)
					if err := s.Load(); err != nil {
						log.Printf("⚠️ 集合文件变化后重载失败: %v", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ 集合文件监听错误: %v", err)
			case <-s.done:
				return
			}
		}
	}()

	log.Printf("✅ 已开始监听集合文件: %s", fullPath)
	return nil
}

// Close 停止文件监听
func (s *CatalogService) Close() {
	close(s.done)
	if s.watcher != nil {
		s.watcher.Close()
	}
}
