package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"clicklink-admin/internal/calllog"
	"clicklink-admin/internal/model"
	"clicklink-admin/internal/registry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	endpointTokenID = "/api/tokenId"
	endpointEndURL  = "/api/endurl"

	tokenCachePrefix = "redirect:token:"
	tokenCacheTTL    = 10 * time.Minute
)

// APIHandler 公共解析 API 的处理器
// 所有端点出现内部故障时都返回带 code:500 的 JSON，绝不把异常抛给调用方
type APIHandler struct {
	registry *registry.Registry
	recorder *calllog.Recorder
	redis    *redis.Client
}

// NewAPIHandler 创建处理器实例
func NewAPIHandler(reg *registry.Registry, recorder *calllog.Recorder, redisClient *redis.Client) *APIHandler {
	return &APIHandler{registry: reg, recorder: recorder, redis: redisClient}
}

// clientIP 取调用方 IP，取不到时记为 unknown
func clientIP(c *gin.Context) string {
	if ip := c.ClientIP(); ip != "" {
		return ip
	}
	return "unknown"
}

// TokenID godoc
// @Summary 获取一个随机 clickId
// @Description 携带 gad_source 标记换取一个随机分流令牌
// @Tags API
// @Produce json
// @Param gad_source query string true "来源标记，任意非空字符串"
// @Param token query string false "可选透传参数，服务端忽略"
// @Success 200 {object} gin.H "msg/code/clickId"
// @Router /api/tokenId [get]
func (h *APIHandler) TokenID(c *gin.Context) {
	ip := clientIP(c)

	if c.Query("gad_source") == "" {
		h.recorder.Record(endpointTokenID, ip, 400)
		c.JSON(http.StatusOK, gin.H{"msg": "data error", "code": 400})
		return
	}

	link, err := h.registry.PickRandom()
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.recorder.Record(endpointTokenID, ip, 404)
			c.JSON(http.StatusOK, gin.H{"msg": "data error", "code": 404})
			return
		}
		zap.S().Errorf("随机取链接失败: %v", err)
		h.recorder.Record(endpointTokenID, ip, 500)
		c.JSON(http.StatusOK, gin.H{"msg": "data error", "code": 500})
		return
	}

	h.recorder.Record(endpointTokenID, ip, 200)
	c.JSON(http.StatusOK, gin.H{
		"msg":     "success",
		"code":    200,
		"clickId": link.ClickID,
	})
}

// EndURL godoc
// @Summary 解析 clickId 到目标地址
// @Tags API
// @Produce json
// @Param tokenId query int true "待解析的 clickId"
// @Success 200 {object} gin.H "msg/code/data"
// @Router /api/endurl [get]
func (h *APIHandler) EndURL(c *gin.Context) {
	ip := clientIP(c)

	tokenID, err := strconv.ParseInt(c.Query("tokenId"), 10, 64)
	if err != nil {
		// 缺失或非整数的 tokenId 一律按不存在处理
		h.recorder.Record(endpointEndURL, ip, 404)
		c.JSON(http.StatusOK, gin.H{"msg": "指定的 tokenId 不存在", "code": 404})
		return
	}

	if link, ok := h.cachedLink(tokenID); ok {
		h.recorder.Record(endpointEndURL, ip, 200)
		c.JSON(http.StatusOK, resolutionResponse(link))
		return
	}

	link, err := h.registry.FindByToken(tokenID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			h.recorder.Record(endpointEndURL, ip, 404)
			c.JSON(http.StatusOK, gin.H{"msg": "指定的 tokenId 不存在", "code": 404})
			return
		}
		zap.S().Errorf("解析 tokenId 失败: %v", err)
		h.recorder.Record(endpointEndURL, ip, 500)
		c.JSON(http.StatusOK, gin.H{"msg": "服务器错误", "code": 500})
		return
	}

	h.cacheLink(link)
	h.recorder.Record(endpointEndURL, ip, 200)
	c.JSON(http.StatusOK, resolutionResponse(link))
}

// GetLinks godoc
// @Summary 输出全部分流链接
// @Description 直接输出后台已经创建的分流链接，不鉴权也不记调用日志
// @Tags API
// @Produce json
// @Success 200 {object} gin.H "msg/code/data"
// @Router /api/get-links [get]
func (h *APIHandler) GetLinks(c *gin.Context) {
	links, err := h.registry.ListAll()
	if err != nil {
		zap.S().Errorf("获取分流链接失败: %v", err)
		c.JSON(http.StatusOK, gin.H{"msg": "服务器错误", "code": 500})
		return
	}
	if len(links) == 0 {
		c.JSON(http.StatusOK, gin.H{"msg": "没有找到任何分流链接", "code": 404})
		return
	}

	data := make([]gin.H, 0, len(links))
	for _, link := range links {
		data = append(data, gin.H{
			"clickId":     link.ClickID,
			"redirectUrl": link.RedirectURL,
			"userName":    link.UserName,
		})
	}
	c.JSON(http.StatusOK, gin.H{"msg": "success", "code": 200, "data": data})
}

func resolutionResponse(link *model.RedirectLink) gin.H {
	return gin.H{
		"msg":  "success",
		"code": 200,
		"data": gin.H{
			"redirectUrl": link.RedirectURL,
			"clickId":     link.ClickID,
			"userName":    link.UserName,
		},
	}
}

// cachedLink 尝试从 Redis 读取解析结果，缓存未配置或未命中时返回 false
func (h *APIHandler) cachedLink(tokenID int64) (*model.RedirectLink, bool) {
	if h.redis == nil {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	val, err := h.redis.Get(ctx, tokenCacheKey(tokenID)).Result()
	if err != nil {
		return nil, false
	}
	var link model.RedirectLink
	if json.Unmarshal([]byte(val), &link) != nil {
		return nil, false
	}
	return &link, true
}

func (h *APIHandler) cacheLink(link *model.RedirectLink) {
	if h.redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(link)
	if err != nil {
		return
	}
	h.redis.Set(ctx, tokenCacheKey(link.ClickID), payload, tokenCacheTTL)
}

func tokenCacheKey(tokenID int64) string {
	return tokenCachePrefix + strconv.FormatInt(tokenID, 10)
}
