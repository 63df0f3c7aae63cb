package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"shopadmin/internal/auth"
	"shopadmin/internal/config"
	"shopadmin/internal/model"
	"shopadmin/internal/service"
	"shopadmin/internal/storage"
)

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storage           storage.Storage
	storagePublicBase string
	authManager       *auth.Manager
	authService       *service.AuthService
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, store storage.Storage) (*HTTPHandler, error) {
	sessionExpiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	apiExpiry := time.Duration(cfg.JWTLongLivedDays) * 24 * time.Hour
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, sessionExpiry, apiExpiry)
	if err != nil {
		return nil, err
	}

	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storage:           store,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		authService:       service.NewAuthService(repo, authManager),
	}

	return handler, nil
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// publicFileURL 由存储返回的相对路径拼出客户端可访问的 URL
func (h *HTTPHandler) publicFileURL(relativePath string) string {
	trimmed := strings.TrimLeft(strings.TrimSpace(relativePath), "/")
	if trimmed == "" {
		return ""
	}
	return h.storagePublicBase + "/" + trimmed
}

// respondDomainError 记录内部错误，并根据环境决定是否暴露错误详情
func (h *HTTPHandler) respondDomainError(c *gin.Context, err error) {
	if domainErr, ok := service.AsError(err); ok && domainErr.Kind == service.KindInternal {
		logrus.WithError(domainErr.Unwrap()).WithField("path", c.Request.URL.Path).Error(domainErr.Message)
		if !h.cfg.IsProduction() && domainErr.Unwrap() != nil {
			ErrorResponseWithDetails(c, http.StatusInternalServerError, ErrCodeInternalError,
				"internal server error", gin.H{"cause": domainErr.Unwrap().Error()})
			return
		}
		InternalError(c, "internal server error")
		return
	}
	DomainError(c, err)
}
