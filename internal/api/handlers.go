// internal/api/handlers.go
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/LeizhouHeritage/StoneDogGallery/internal/config"
	apperrors "github.com/LeizhouHeritage/StoneDogGallery/internal/errors"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/models"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/services"
	"github.com/LeizhouHeritage/StoneDogGallery/internal/utils"
	"github.com/gin-gonic/gin"
)

// Handler 处理API请求
type Handler struct {
	// 核心服务
	CatalogService *services.CatalogService // 藏品集合服务
	ComposeService *services.ComposeService // 换装会话服务
	WishService    *services.WishService    // 许愿池服务
	ConfigService  *services.ConfigService  // 配置服务
	StatsService   *services.StatsService   // 统计服务
	Traits         *config.TraitConfig      // 部位类别配置
	Response       *ResponseHelper          // 响应助手
	apiMetrics     *utils.APIMetrics
}

// FilterRequest 图鉴筛选请求
type FilterRequest struct {
	Tags       []string          `json:"tags"`       // 选中的标签，OR语义
	Attributes map[string]string `json:"attributes"` // 部位约束，AND语义，空值视为未激活
}

// ToggleTagRequest 标签开关请求
type ToggleTagRequest struct {
	Selection []string `json:"selection"` // 当前选中的标签
	Tag       string   `json:"tag"`       // 被点击的标签
}

// OpenComposeRequest 开启换装会话的请求
type OpenComposeRequest struct {
	ItemName string `json:"item_name"` // 作为底本的藏品名称
}

// SetOverrideRequest 替换部位取值的请求
type SetOverrideRequest struct {
	Category string `json:"category"` // 部位类别
	Value    string `json:"value"`    // 新取值
}

// WishRequest 许愿请求
type WishRequest struct {
	Content string `json:"content"` // 愿望内容
}

// SaveSettingsRequest 保存设置的请求
type SaveSettingsRequest struct {
	Provider string            `json:"provider"` // 文本生成提供者名称
	Settings map[string]string `json:"settings"` // 提供者配置（api_key、default_model等）
}

// APIResponse 标准API响应格式
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"` // 用于调试和追踪
}

// APIError 标准错误格式
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// NewHandler 创建API处理器
func NewHandler(
	catalog *services.CatalogService,
	compose *services.ComposeService,
	wish *services.WishService,
	cfg *services.ConfigService,
	stats *services.StatsService,
	traits *config.TraitConfig,
) *Handler {
	return &Handler{
		CatalogService: catalog,
		ComposeService: compose,
		WishService:    wish,
		ConfigService:  cfg,
		StatsService:   stats,
		Traits:         traits,
		Response:       NewResponseHelper(),
		apiMetrics:     utils.NewAPIMetrics(),
	}
}

// respondWithError 把服务层错误翻译为HTTP响应
func (h *Handler) respondWithError(c *gin.Context, err error) {
	switch {
	case apperrors.IsValidationError(err):
		h.Response.BadRequest(c, err.Error())
	case apperrors.IsNotFoundError(err):
		h.Response.NotFound(c, ErrorNotFound, err.Error())
	case apperrors.IsLoadError(err):
		h.Response.Error(c, http.StatusInternalServerError, ErrorCatalogLoadFailed, err.Error())
	default:
		h.Response.InternalError(c, err.Error())
	}
}

// requireCatalog 确认藏品集合已加载，未加载时直接响应503
func (h *Handler) requireCatalog(c *gin.Context) bool {
	if !h.CatalogService.Loaded() {
		h.Response.Error(c, http.StatusServiceUnavailable, ErrorCatalogNotLoaded,
			"藏品集合尚未加载，请稍后重试")
		return false
	}
	return true
}

// ------------------------------------------------
// 页面处理器
// ------------------------------------------------

// IndexPage 渲染首页
func (h *Handler) IndexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "雷州石狗数字图鉴",
		"count": h.CatalogService.Count(),
	})
}

// GalleryPage 渲染图鉴页
func (h *Handler) GalleryPage(c *gin.Context) {
	c.HTML(http.StatusOK, "gallery.html", gin.H{
		"title":      "石狗图鉴",
		"categories": h.Traits.Categories,
		"tags":       h.Traits.Tags,
	})
}

// MuseumPage 渲染石狗博物馆介绍页
func (h *Handler) MuseumPage(c *gin.Context) {
	c.HTML(http.StatusOK, "museum.html", gin.H{
		"title": "雷州石狗博物馆",
		"count": h.CatalogService.Count(),
	})
}

// WishingPoolPage 渲染许愿池页
func (h *Handler) WishingPoolPage(c *gin.Context) {
	c.HTML(http.StatusOK, "wishing_pool.html", gin.H{
		"title": "石狗许愿池",
	})
}

// ViewerPage 渲染换装预览页
func (h *Handler) ViewerPage(c *gin.Context) {
	c.HTML(http.StatusOK, "viewer.html", gin.H{
		"title": "石狗换装预览",
		"name":  c.Query("name"),
	})
}

// SettingsPage 渲染设置页
func (h *Handler) SettingsPage(c *gin.Context) {
	c.HTML(http.StatusOK, "settings.html", gin.H{
		"title": "系统设置",
	})
}

// ------------------------------------------------
// 藏品与筛选
// ------------------------------------------------

// GetItems 返回全部藏品
func (h *Handler) GetItems(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	h.StatsService.RecordRequest()

	items := h.CatalogService.Items()
	h.Response.Success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// GetItem 按名称返回单件藏品
func (h *Handler) GetItem(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	name := c.Param("name")
	item, err := h.CatalogService.FindItem(name)
	if err != nil {
		h.Response.NotFound(c, ErrorItemNotFound, err.Error())
		return
	}

	h.Response.Success(c, item)
}

// FilterItems 计算筛选条件下可见的藏品子集
// 筛选是纯计算：不修改集合，相同条件必得相同结果
func (h *Handler) FilterItems(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	var req FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorCriteriaInvalid, "筛选条件格式错误", err.Error())
		return
	}

	h.StatsService.RecordRequest()

	items := h.CatalogService.Items()
	criteria := models.FilterCriteria{
		TagSelection:       req.Tags,
		AttributeSelection: req.Attributes,
	}

	visible := services.ApplyFilter(items, criteria)
	h.apiMetrics.RecordFilterQuery(len(visible), len(items))

	h.Response.Success(c, gin.H{
		"items":   visible,
		"visible": len(visible),
		"total":   len(items),
	})
}

// ToggleFilterTag 对标签选择做对称差并返回新选择
func (h *Handler) ToggleFilterTag(c *gin.Context) {
	var req ToggleTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	if req.Tag == "" {
		h.Response.BadRequest(c, "标签不能为空")
		return
	}

	h.Response.Success(c, gin.H{
		"selection": services.ToggleTag(req.Selection, req.Tag),
	})
}

// GetTraitCategories 返回既定的部位类别（按叠放顺序）和标签词表
func (h *Handler) GetTraitCategories(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"categories": h.Traits.Categories,
		"tags":       h.Traits.Tags,
	})
}

// GetTraitValues 返回某个部位类别在全部藏品上出现过的取值
// 取值按首次出现顺序排列，与集合文件中的记录顺序一致
func (h *Handler) GetTraitValues(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	category := c.Param("category")
	if !h.Traits.IsRecognized(category) {
		h.Response.Error(c, http.StatusBadRequest, ErrorCategoryUnknown, "未知的部位类别: "+category)
		return
	}

	values := services.DistinctValues(h.CatalogService.Items(), category)
	h.Response.Success(c, gin.H{
		"category": category,
		"values":   values,
	})
}

// ------------------------------------------------
// 换装会话
// ------------------------------------------------

// CreateComposeSession 基于一件藏品开启换装会话
func (h *Handler) CreateComposeSession(c *gin.Context) {
	if !h.requireCatalog(c) {
		return
	}

	var req OpenComposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "请求格式错误", err.Error())
		return
	}

	item, err := h.CatalogService.FindItem(req.ItemName)
	if err != nil {
		h.Response.NotFound(c, ErrorItemNotFound, err.Error())
		return
	}

	session := h.ComposeService.OpenSession(item)
	h.Response.Created(c, session, "换装会话已开启")
}

// GetComposeSession 返回换装会话的当前状态
func (h *Handler) GetComposeSession(c *gin.Context) {
	session, err := h.ComposeService.GetSession(c.Param("id"))
	if err != nil {
		h.Response.NotFound(c, ErrorSessionNotFound, err.Error())
		return
	}

	h.Response.Success(c, session)
}

// SetComposeOverride 替换会话中单个部位的取值
// 只影响当前会话，藏品集合和其他会话都不受影响
func (h *Handler) SetComposeOverride(c *gin.Context) {
	var req SetOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorOverrideInvalid, "请求格式错误", err.Error())
		return
	}

	session, err := h.ComposeService.SetOverride(c.Param("id"), req.Category, req.Value)
	if err != nil {
		if apperrors.IsValidationError(err) {
			h.Response.Error(c, http.StatusBadRequest, ErrorOverrideInvalid, err.Error())
			return
		}
		h.Response.NotFound(c, ErrorSessionNotFound, err.Error())
		return
	}

	h.Response.Success(c, session)
}

// GetComposeLayers 返回会话当前的素材图层，按叠放顺序排列
func (h *Handler) GetComposeLayers(c *gin.Context) {
	layers, err := h.ComposeService.Layers(c.Param("id"))
	if err != nil {
		h.Response.NotFound(c, ErrorSessionNotFound, err.Error())
		return
	}

	h.Response.Success(c, gin.H{
		"layers": layers,
	})
}

// CloseComposeSession 关闭并丢弃换装会话
func (h *Handler) CloseComposeSession(c *gin.Context) {
	h.ComposeService.CloseSession(c.Param("id"))
	h.Response.Success(c, nil, "换装会话已关闭")
}

// ------------------------------------------------
// 许愿池
// ------------------------------------------------

// MakeWish 接受一条愿望并返回石狗的回应
func (h *Handler) MakeWish(c *gin.Context) {
	var req WishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorWishInvalid, "请求格式错误", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	wish, err := h.WishService.MakeWish(ctx, req.Content)
	if err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorWishInvalid, err.Error())
		return
	}

	h.StatsService.RecordWish()
	h.Response.Created(c, wish, "石狗已回应")
}

// GetRecentWishes 返回最近的愿望列表
func (h *Handler) GetRecentWishes(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	wishes, err := h.WishService.RecentWishes(limit)
	if err != nil {
		h.respondWithError(c, err)
		return
	}

	h.Response.Success(c, gin.H{
		"wishes":  wishes,
		"viewers": wishHub.ClientCount(),
	})
}

// GetLLMStatus 返回文本生成服务的状态
func (h *Handler) GetLLMStatus(c *gin.Context) {
	h.Response.Success(c, h.ConfigService.LLMStatus())
}

// ------------------------------------------------
// 设置与运维
// ------------------------------------------------

// GetSettings 返回当前设置（密钥脱敏）
func (h *Handler) GetSettings(c *gin.Context) {
	cfg := h.ConfigService.GetConfig()

	llmConfig := make(map[string]string, len(cfg.LLMConfig))
	for key, value := range cfg.LLMConfig {
		llmConfig[key] = value
	}
	if llmConfig["api_key"] != "" {
		llmConfig["api_key"] = maskSecret(llmConfig["api_key"])
	}

	h.Response.Success(c, gin.H{
		"port":             cfg.Port,
		"debug_mode":       cfg.DebugMode,
		"collection_file":  cfg.CollectionFile,
		"watch_collection": cfg.WatchCollection,
		"llm_provider":     cfg.LLMProvider,
		"llm_config":       llmConfig,
	})
}

// SaveSettings 更新文本生成配置并热切换提供者
func (h *Handler) SaveSettings(c *gin.Context) {
	var req SaveSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid, "请求格式错误", err.Error())
		return
	}

	provider, err := h.ConfigService.UpdateLLMSettings(req.Provider, req.Settings)
	if err != nil {
		if apperrors.IsValidationError(err) {
			h.Response.Error(c, http.StatusBadRequest, ErrorLLMConfigInvalid, err.Error())
			return
		}
		h.respondWithError(c, err)
		return
	}

	h.WishService.SetProvider(provider)
	h.Response.Success(c, gin.H{
		"provider": req.Provider,
	}, "设置已保存")
}

// ReloadCatalog 手动重载藏品集合
func (h *Handler) ReloadCatalog(c *gin.Context) {
	if err := h.CatalogService.Load(); err != nil {
		h.Response.Error(c, http.StatusInternalServerError, ErrorCatalogLoadFailed, err.Error())
		return
	}

	h.Response.Success(c, gin.H{
		"total": h.CatalogService.Count(),
	}, "藏品集合已重载")
}

// GetStats 返回访问统计
func (h *Handler) GetStats(c *gin.Context) {
	h.Response.Success(c, h.StatsService.GetStats())
}

// GetMetrics 返回运行指标快照（调试用）
func (h *Handler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"metrics":          utils.GetMetricsCollector().GetMetrics(),
		"compose_sessions": h.ComposeService.SessionCount(),
		"wish_viewers":     wishHub.ClientCount(),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

// WishWebSocketHandler 处理许愿池 WebSocket 连接
func (h *Handler) WishWebSocketHandler(c *gin.Context) {
	WishWebSocket(c)
}

// maskSecret 对密钥脱敏，只保留尾部4位
func maskSecret(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
