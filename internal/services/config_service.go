// internal/services/config_service.go
package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/llm"
)

// ConfigService 提供配置管理功能
type ConfigService struct {
	// 缓存最近获取的配置，减少反复访问底层存储
	cachedConfig *config.AppConfig

	// 配置更新时间
	lastUpdated time.Time

	// 缓存有效期
	cacheTTL time.Duration

	// 互斥锁保护内部状态
	mu sync.RWMutex
}

// NewConfigService 创建配置服务实例
func NewConfigService() *ConfigService {
	return &ConfigService{
		cacheTTL: 30 * time.Second,
	}
}

// GetConfig 返回当前配置（带缓存）
func (s *ConfigService) GetConfig() *config.AppConfig {
	s.mu.RLock()
	if s.cachedConfig != nil && time.Since(s.lastUpdated) < s.cacheTTL {
		cfg := s.cachedConfig
		s.mu.RUnlock()
		return cfg
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.cachedConfig = config.GetCurrentConfig()
	s.lastUpdated = time.Now()

	return s.cachedConfig
}

// UpdateLLMSettings 更新许愿池文本生成配置并返回新的提供者实例
func (s *ConfigService) UpdateLLMSettings(provider string, settings map[string]string) (llm.Provider, error) {
	if provider == "" {
		return nil, apperrors.NewValidationError("提供者名称不能为空", nil)
	}

	// 先验证提供者可以用给定配置初始化
	instance, err := llm.GetProvider(provider, settings)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("初始化提供者 %s 失败", provider), err)
	}

	if err := config.UpdateLLMConfig(provider, settings); err != nil {
		return nil, apperrors.NewProcessingError("保存配置失败", err)
	}

	s.mu.Lock()
	s.cachedConfig = nil
	s.mu.Unlock()

	return instance, nil
}

// LLMStatus 返回文本生成服务的当前状态
func (s *ConfigService) LLMStatus() map[string]interface{} {
	cfg := s.GetConfig()

	configured := cfg.LLMConfig != nil && cfg.LLMConfig["api_key"] != ""

	return map[string]interface{}{
		"provider":   cfg.LLMProvider,
		"configured": configured,
		"providers":  llm.ListProviders(),
		"models":     llm.GetSupportedModelsForProvider(cfg.LLMProvider),
	}
}
