// internal/api/error_codes.go
package api

// API错误代码常量
const (
	// 通用错误
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"
	ErrorUnauthorized  = "UNAUTHORIZED"

	// 藏品集合相关错误
	ErrorCatalogNotLoaded  = "CATALOG_NOT_LOADED"
	ErrorCatalogLoadFailed = "CATALOG_LOAD_FAILED"
	ErrorItemNotFound      = "ITEM_NOT_FOUND"

	// 部位/筛选相关错误
	ErrorCategoryUnknown = "CATEGORY_UNKNOWN"
	ErrorCriteriaInvalid = "CRITERIA_INVALID"

	// 换装会话相关错误
	ErrorSessionNotFound = "SESSION_NOT_FOUND"
	ErrorOverrideInvalid = "OVERRIDE_INVALID"

	// 许愿池相关错误
	ErrorWishInvalid = "WISH_INVALID"

	// LLM服务相关错误
	ErrorLLMConfigInvalid = "LLM_CONFIG_INVALID"
)
