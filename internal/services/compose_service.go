// internal/services/compose_service.go
package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/google/uuid"
)

// ComposeService 管理"换装"预览会话
// 会话只存在于内存中，对话框关闭或闲置超时后即被丢弃，从不落盘
type ComposeService struct {
	traits *config.TraitConfig

	mu       sync.RWMutex
	sessions map[string]*models.ComposeSession

	idleTTL time.Duration
	done    chan struct{}
}

// NewComposeService 创建换装会话服务
func NewComposeService(traits *config.TraitConfig) *ComposeService {
	s := &ComposeService{
		traits:   traits,
		sessions: make(map[string]*models.ComposeSession),
		idleTTL:  30 * time.Minute,
		done:     make(chan struct{}),
	}

	s.startCleanup()

	return s
}

// OpenSession 基于一件藏品开启预览会话
// Overrides 从藏品自身属性复制初始化，之后的修改不会触及藏品本身
func (s *ComposeService) OpenSession(item models.Item) *models.ComposeSession {
	overrides := make(map[string]string, len(item.Attributes))
	for _, attr := range item.Attributes {
		overrides[attr.TraitType] = attr.Value
	}

	now := time.Now()
	session := &models.ComposeSession{
		ID:         uuid.NewString(),
		ItemName:   item.Name,
		Overrides:  overrides,
		CreatedAt:  now,
		LastActive: now,
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// GetSession 返回会话的副本
func (s *ComposeService) GetSession(id string) (models.ComposeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[id]
	if !exists {
		return models.ComposeSession{}, apperrors.NewNotFoundError(fmt.Sprintf("换装会话不存在: %s", id), nil)
	}

	return session.Clone(), nil
}

// SetOverride 替换单个部位的取值，其余部位保持不变
func (s *ComposeService) SetOverride(id, category, value string) (models.ComposeSession, error) {
	if !s.traits.IsRecognized(category) {
		return models.ComposeSession{}, apperrors.NewValidationError(fmt.Sprintf("未知的部位类别: %s", category), nil)
	}
	if value == "" {
		return models.ComposeSession{}, apperrors.NewValidationError("部位取值不能为空", nil)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, exists := s.sessions[id]
	if !exists {
		return models.ComposeSession{}, apperrors.NewNotFoundError(fmt.Sprintf("换装会话不存在: %s", id), nil)
	}

	session.Overrides[category] = value
	session.LastActive = time.Now()

	return session.Clone(), nil
}

// Layers 按既定类别的叠放顺序解析当前会话的素材图层
// 素材路径按 <base>/<category>/<value><ext> 约定推导
func (s *ComposeService) Layers(id string) ([]models.ComposeLayer, error) {
	session, err := s.GetSession(id)
	if err != nil {
		return nil, err
	}

	layers := make([]models.ComposeLayer, 0, len(session.Overrides))
	for category, value := range session.Overrides {
		z := s.traits.ZIndex(category)
		if z < 0 {
			// 藏品数据中未被识别的类别不参与合成
			continue
		}
		layers = append(layers, models.ComposeLayer{
			Category:  category,
			Value:     value,
			AssetPath: s.traits.ResolveAssetPath(category, value),
			ZIndex:    z,
		})
	}

	sort.Slice(layers, func(i, j int) bool {
		return layers[i].ZIndex < layers[j].ZIndex
	})

	return layers, nil
}

// CloseSession 关闭并丢弃会话
func (s *ComposeService) CloseSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// SessionCount 返回当前存活的会话数
func (s *ComposeService) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// startCleanup 定期清理闲置超时的会话
func (s *ComposeService) startCleanup() {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweepIdleSessions()
			case <-s.done:
				return
			}
		}
	}()
}

// sweepIdleSessions 移除闲置超过TTL的会话
func (s *ComposeService) sweepIdleSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, session := range s.sessions {
		if now.Sub(session.LastActive) > s.idleTTL {
			delete(s.sessions, id)
		}
	}
}

// Stop 停止后台清理
func (s *ComposeService) Stop() {
	close(s.done)
}
