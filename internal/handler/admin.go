package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"clicklink-admin/internal/calllog"
	"clicklink-admin/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultFilterEndpoint = "/api/resolution"
	defaultActiveSection  = "link-management"
)

// AdminHandler 管理后台的列表和增删改处理器，全部挂在会话中间件之后
type AdminHandler struct {
	registry *registry.Registry
	recorder *calllog.Recorder
	redis    *redis.Client
}

// NewAdminHandler 创建处理器实例
func NewAdminHandler(reg *registry.Registry, recorder *calllog.Recorder, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{registry: reg, recorder: recorder, redis: redisClient}
}

// Dashboard 管理页：全部链接 + 按 endpoint 过滤的分页调用日志
func (h *AdminHandler) Dashboard(c *gin.Context) {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		page = 1
	}
	filterEndpoint := c.DefaultQuery("filter_endpoint", defaultFilterEndpoint)
	activeSection := c.DefaultQuery("active_section", defaultActiveSection)

	links, err := h.registry.ListAll()
	if err != nil {
		zap.S().Errorf("查询链接列表失败: %v", err)
		h.renderError(c, "服务器错误，请稍后再试")
		return
	}

	logs, currentPage, totalPages, err := h.recorder.Page(filterEndpoint, page)
	if err != nil {
		zap.S().Errorf("查询调用日志失败: %v", err)
		h.renderError(c, "服务器错误，请稍后再试")
		return
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"data_store":      links,
		"api_logs":        logs,
		"current_page":    currentPage,
		"total_pages":     totalPages,
		"filter_endpoint": filterEndpoint,
		"active_section":  activeSection,
	})
}

// Create 新建分流链接，成功后 302 回列表页避免刷新重复提交
func (h *AdminHandler) Create(c *gin.Context) {
	redirectURL := c.PostForm("redirectUrl")
	userName := c.PostForm("userName")

	if _, err := h.registry.Create(redirectURL, userName); err != nil {
		var ve *registry.ValidationError
		if errors.As(err, &ve) {
			zap.S().Warnf("无效输入: %v", ve)
			h.renderError(c, ve.Message)
			return
		}
		zap.S().Errorf("添加链接失败: %v", err)
		h.renderError(c, "服务器错误，请稍后再试")
		return
	}

	c.Redirect(http.StatusFound, "/admin")
}

// Update 按 clickId 更新链接
func (h *AdminHandler) Update(c *gin.Context) {
	clickID, err := strconv.ParseInt(c.PostForm("clickId"), 10, 64)
	if err != nil {
		h.renderError(c, registry.ErrNotFound.Error())
		return
	}
	redirectURL := c.PostForm("redirectUrl")
	userName := c.PostForm("userName")

	if _, err := h.registry.Update(clickID, redirectURL, userName); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.renderError(c, registry.ErrNotFound.Error())
			return
		}
		zap.S().Errorf("更新链接失败: %v", err)
		h.renderError(c, "服务器错误，请稍后再试")
		return
	}

	h.invalidateCache(clickID)
	c.Redirect(http.StatusFound, "/admin")
}

// Delete 按 clickId 删除链接
func (h *AdminHandler) Delete(c *gin.Context) {
	clickID, err := strconv.ParseInt(c.PostForm("clickId"), 10, 64)
	if err != nil {
		h.renderError(c, registry.ErrNotFound.Error())
		return
	}

	if err := h.registry.Delete(clickID); err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.renderError(c, registry.ErrNotFound.Error())
			return
		}
		zap.S().Errorf("删除链接失败: %v", err)
		h.renderError(c, "服务器错误，请稍后再试")
		return
	}

	h.invalidateCache(clickID)
	c.Redirect(http.StatusFound, "/admin")
}

// renderError 出错时带内联错误信息重新渲染列表页
// 日志部分退化为未过滤的前 16 条
func (h *AdminHandler) renderError(c *gin.Context, message string) {
	links, err := h.registry.ListAll()
	if err != nil {
		zap.S().Errorf("查询链接列表失败: %v", err)
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"error":           message,
		"data_store":      links,
		"api_logs":        h.recorder.FirstN(calllog.LogsPerPage),
		"current_page":    1,
		"total_pages":     1,
		"filter_endpoint": defaultFilterEndpoint,
		"active_section":  defaultActiveSection,
	})
}

// invalidateCache 链接变更后清掉对应的解析缓存
func (h *AdminHandler) invalidateCache(clickID int64) {
	if h.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	h.redis.Del(ctx, tokenCacheKey(clickID))
}
