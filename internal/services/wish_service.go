// internal/services/wish_service.go
package services

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/llm"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/storage"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/utils"
	"github.com/google/uuid"
)

// 石狗回应的兜底文本，外部服务不可用时使用
const defaultBlessing = "石狗已听见你的心愿，愿风调雨顺，岁岁平安。"

// 许愿池的系统提示词
const wishSystemPrompt = "你是雷州半岛村口的一尊石狗，千百年来守护一方水土。" +
	"村民向你许愿，请用温和、简短、带有雷州民俗气息的话语回应祝福，不超过两句话。"

// WishService 处理许愿池业务
// 对外部文本生成服务是尽力而为：失败时退回默认祝福，从不把错误抛给许愿者
type WishService struct {
	storage *storage.FileStorage
	metrics *utils.APIMetrics

	mu       sync.RWMutex
	provider llm.Provider

	// broadcast 由API层注入，用于向在线观众推送新愿望
	broadcast func(models.Wish)
}

// NewWishService 创建许愿池服务
// provider 可以为 nil，此时所有愿望都得到默认回应
func NewWishService(fs *storage.FileStorage, provider llm.Provider) *WishService {
	return &WishService{
		storage:  fs,
		metrics:  utils.NewAPIMetrics(),
		provider: provider,
	}
}

// SetProvider 热更新文本生成提供者（设置页保存后调用）
func (s *WishService) SetProvider(provider llm.Provider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider = provider
}

// ProviderName 返回当前提供者名称，未配置时为空字符串
func (s *WishService) ProviderName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.provider == nil {
		return ""
	}
	return s.provider.GetName()
}

// SetBroadcast 注入愿望广播回调
func (s *WishService) SetBroadcast(fn func(models.Wish)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcast = fn
}

// MakeWish 接受一条愿望并返回石狗的回应
func (s *WishService) MakeWish(ctx context.Context, content string) (models.Wish, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Wish{}, apperrors.NewValidationError("愿望内容不能为空", nil)
	}

	wish := models.Wish{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: time.Now(),
	}

	wish.Blessing, wish.Provider = s.respond(ctx, content)

	if err := s.appendWish(wish); err != nil {
		// 记录失败不影响许愿本身
		log.Printf("⚠️ 保存愿望记录失败: %v", err)
	}

	s.mu.RLock()
	broadcast := s.broadcast
	s.mu.RUnlock()
	if broadcast != nil {
		broadcast(wish)
	}

	return wish, nil
}

// respond 调用文本生成服务，失败时退回默认祝福
func (s *WishService) respond(ctx context.Context, content string) (blessing, providerName string) {
	s.mu.RLock()
	provider := s.provider
	s.mu.RUnlock()

	if provider == nil {
		s.metrics.RecordWishRequest("", 0, 0, true)
		return defaultBlessing, ""
	}

	start := time.Now()
	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		SystemPrompt: wishSystemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: content},
		},
		MaxTokens:   200,
		Temperature: 0.8,
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Text) == "" {
		log.Printf("⚠️ 许愿池回应生成失败，使用默认祝福: %v", err)
		s.metrics.RecordWishRequest(provider.GetName(), 0, time.Since(start), true)
		return defaultBlessing, ""
	}

	s.metrics.RecordWishRequest(resp.ProviderName, resp.TokensUsed, time.Since(start), false)
	return strings.TrimSpace(resp.Text), resp.ProviderName
}

// 愿望记录最多保留的条数
const maxStoredWishes = 500

// appendWish 把愿望追加到记录文件
func (s *WishService) appendWish(wish models.Wish) error {
	var wishes []models.Wish
	if s.storage.FileExists("wishes", "wishes.json") {
		if err := s.storage.LoadJSONFile("wishes", "wishes.json", &wishes); err != nil {
			return err
		}
	}

	wishes = append(wishes, wish)
	if len(wishes) > maxStoredWishes {
		wishes = wishes[len(wishes)-maxStoredWishes:]
	}

	return s.storage.SaveJSONFile("wishes", "wishes.json", wishes)
}

// RecentWishes 返回最近的n条愿望，按时间倒序
func (s *WishService) RecentWishes(n int) ([]models.Wish, error) {
	if !s.storage.FileExists("wishes", "wishes.json") {
		return []models.Wish{}, nil
	}

	var wishes []models.Wish
	if err := s.storage.LoadJSONFile("wishes", "wishes.json", &wishes); err != nil {
		return nil, apperrors.NewProcessingError("读取愿望记录失败", err)
	}

	if n <= 0 || n > len(wishes) {
		n = len(wishes)
	}

	recent := make([]models.Wish, 0, n)
	for i := len(wishes) - 1; i >= len(wishes)-n; i-- {
		recent = append(recent, wishes[i])
	}

	return recent, nil
}
