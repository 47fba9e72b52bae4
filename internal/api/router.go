// internal/api/router.go
package api

import (
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/di"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/services"
	"github.com/gin-gonic/gin"
)

// SetupRouter 配置HTTP路由
func SetupRouter() (*gin.Engine, error) {
	// 获取配置
	cfg := config.GetCurrentConfig()

	// 获取依赖注入容器
	container := di.GetContainer()

	// 只从容器获取服务，不创建新实例
	catalogService, ok := container.Get("catalog").(*services.CatalogService)
	if !ok {
		return nil, fmt.Errorf("藏品集合服务未正确初始化")
	}

	composeService, ok := container.Get("compose").(*services.ComposeService)
	if !ok {
		return nil, fmt.Errorf("换装会话服务未正确初始化")
	}

	wishService, ok := container.Get("wish").(*services.WishService)
	if !ok {
		return nil, fmt.Errorf("许愿池服务未正确初始化")
	}

	configService, ok := container.Get("config").(*services.ConfigService)
	if !ok {
		return nil, fmt.Errorf("配置服务未正确初始化")
	}

	statsService, ok := container.Get("stats").(*services.StatsService)
	if !ok {
		return nil, fmt.Errorf("统计服务未正确初始化")
	}

	traitConfig, ok := container.Get("traits").(*config.TraitConfig)
	if !ok {
		return nil, fmt.Errorf("部位类别配置未正确初始化")
	}

	// 新愿望通过 WebSocket 推送给在线观众
	wishService.SetBroadcast(wishHub.BroadcastWish)

	// 创建API处理器
	handler := NewHandler(
		catalogService,
		composeService,
		wishService,
		configService,
		statsService,
		traitConfig,
	)

	// 创建路由
	r := gin.Default()

	// 启用CORS和请求追踪
	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	r.Use(metricsMiddleware())

	// HTTPS重定向（生产环境）
	if !cfg.DebugMode {
		r.Use(func(c *gin.Context) {
			if c.Request.Header.Get("X-Forwarded-Proto") != "https" {
				c.Redirect(http.StatusPermanentRedirect,
					"https://"+c.Request.Host+c.Request.URL.Path)
				return
			}
			c.Next()
		})
	}

	// 静态文件服务
	r.Static("/static", cfg.StaticDir)

	// HTML模板
	r.LoadHTMLGlob(filepath.Join(cfg.TemplatesDir, "*.html"))

	// ===============================
	// 页面路由
	// ===============================
	r.GET("/", handler.IndexPage)
	r.GET("/gallery", handler.GalleryPage)
	r.GET("/museum", handler.MuseumPage)
	r.GET("/wishing-pool", handler.WishingPoolPage)
	r.GET("/viewer", handler.ViewerPage)
	r.GET("/settings", handler.SettingsPage)

	// WebSocket 支持
	r.GET("/ws/wishes", handler.WishWebSocketHandler)

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	api.Use(DefaultRateLimit())
	{
		// ===============================
		// 藏品与筛选
		// ===============================
		itemsGroup := api.Group("/items")
		{
			itemsGroup.GET("", handler.GetItems)
			itemsGroup.POST("/filter", handler.FilterItems)
			itemsGroup.GET("/:name", handler.GetItem)
		}

		filterGroup := api.Group("/filter")
		{
			filterGroup.POST("/toggle-tag", handler.ToggleFilterTag)
		}

		// ===============================
		// 部位类别
		// ===============================
		traitsGroup := api.Group("/traits")
		{
			traitsGroup.GET("", handler.GetTraitCategories)
			traitsGroup.GET("/:category/values", handler.GetTraitValues)
		}

		// ===============================
		// 换装会话
		// ===============================
		composeGroup := api.Group("/compose")
		{
			composeGroup.POST("", handler.CreateComposeSession)
			composeGroup.GET("/:id", handler.GetComposeSession)
			composeGroup.PUT("/:id/override", handler.SetComposeOverride)
			composeGroup.GET("/:id/layers", handler.GetComposeLayers)
			composeGroup.DELETE("/:id", handler.CloseComposeSession)
		}

		// ===============================
		// 许愿池
		// ===============================
		api.POST("/wish", WishRateLimit(), handler.MakeWish)
		api.GET("/wishes", handler.GetRecentWishes)

		// ===============================
		// LLM状态
		// ===============================
		api.GET("/llm/status", handler.GetLLMStatus)

		// ===============================
		// 设置与运维（需要管理令牌）
		// ===============================
		settingsGroup := api.Group("/settings")
		settingsGroup.Use(AdminAuthMiddleware())
		{
			settingsGroup.GET("", handler.GetSettings)
			settingsGroup.POST("", handler.SaveSettings)
		}

		api.POST("/catalog/reload", AdminAuthMiddleware(), handler.ReloadCatalog)

		// ===============================
		// 统计与指标
		// ===============================
		api.GET("/stats", handler.GetStats)
		api.GET("/metrics", handler.GetMetrics)
	}

	return r, nil
}
