// internal/app/app.go
package app

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/di"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/llm"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/services"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/storage"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/utils"

	// 注册可用的文本生成提供者
	_ "github.com/LeizhouHeritage/StoneDogGallery/internal/llm/providers/anthropic"
	_ "github.com/LeizhouHeritage/StoneDogGallery/internal/llm/providers/openai"
)

// InitServices 按依赖顺序初始化所有服务并注册到容器
// 服务只在这里创建一次，路由层只从容器获取
func InitServices() error {
	cfg := config.GetCurrentConfig()
	container := di.GetContainer()

	// 1. 日志
	if err := initLogger(cfg); err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}

	// 2. 文件存储
	fileStorage, err := storage.NewFileStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("初始化文件存储失败: %w", err)
	}
	container.Register("storage", fileStorage)

	// 3. 部位类别配置
	traits, err := config.LoadTraitConfig(filepath.Join(cfg.DataDir, "traits.toml"))
	if err != nil {
		return fmt.Errorf("加载部位类别配置失败: %w", err)
	}
	container.Register("traits", traits)
	log.Printf("✅ 部位类别配置加载完成，共 %d 个类别", len(traits.Categories))

	// 4. 藏品集合
	catalog := services.NewCatalogService(fileStorage, traits, cfg.CollectionFile)
	if err := catalog.Load(); err != nil {
		// 集合加载失败不阻止启动，可以通过重载接口修复
		if apperrors.IsLoadError(err) {
			log.Printf("⚠️ 藏品集合加载失败，图鉴暂不可用: %v", err)
		} else {
			return fmt.Errorf("初始化藏品集合失败: %w", err)
		}
	}
	if cfg.WatchCollection {
		if err := catalog.Watch(); err != nil {
			log.Printf("⚠️ 集合文件监听启动失败: %v", err)
		}
	}
	container.Register("catalog", catalog)

	// 5. 文本生成提供者（可选）
	provider := initLLMProvider(cfg)

	// 6. 许愿池
	wish := services.NewWishService(fileStorage, provider)
	container.Register("wish", wish)

	// 7. 换装会话
	compose := services.NewComposeService(traits)
	container.Register("compose", compose)

	// 8. 统计
	stats := services.NewStatsService(fileStorage)
	container.Register("stats", stats)

	// 9. 配置服务
	configService := services.NewConfigService()
	container.Register("config", configService)

	return nil
}

// initLogger 初始化结构化日志
func initLogger(cfg *config.AppConfig) error {
	if err := utils.InitLogger(filepath.Join(cfg.LogDir, "gallery.log")); err != nil {
		return err
	}

	logger := utils.GetLogger()
	if cfg.DebugMode {
		logger.SetLogLevel(utils.DEBUG)
	} else {
		logger.SetLogLevel(utils.INFO)
	}

	return nil
}

// initLLMProvider 按配置创建文本生成提供者
// 未配置或初始化失败都返回 nil，许愿池退回默认回应
func initLLMProvider(cfg *config.AppConfig) llm.Provider {
	if cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		log.Println("⚠️ 未配置文本生成密钥，许愿池使用默认回应")
		return nil
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		log.Printf("⚠️ 初始化文本生成提供者失败，许愿池使用默认回应: %v", err)
		return nil
	}

	log.Printf("✅ 文本生成提供者就绪: %s", cfg.LLMProvider)
	return provider
}

// Cleanup 停止后台任务并把缓冲数据落盘
func Cleanup() {
	container := di.GetContainer()

	if catalog, ok := container.Get("catalog").(*services.CatalogService); ok {
		catalog.Close()
	}

	if compose, ok := container.Get("compose").(*services.ComposeService); ok {
		compose.Stop()
	}

	if stats, ok := container.Get("stats").(*services.StatsService); ok {
		stats.Flush()
	}

	log.Println("✅ 服务清理完成")
}
