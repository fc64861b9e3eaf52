package handler

import (
	"net/http"

	"clicklink-admin/internal/model"
	"clicklink-admin/pkg/session"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuthHandler 登录、登出相关的处理器
type AuthHandler struct {
	db       *gorm.DB
	sessions *session.Manager
}

// NewAuthHandler 创建一个新的 AuthHandler
func NewAuthHandler(db *gorm.DB, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{db: db, sessions: sessions}
}

// LoginPage 渲染登录页
func (h *AuthHandler) LoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{
		"error": c.Query("error"),
	})
}

// Login 校验表单凭据，成功后签发会话 Cookie 并跳回管理页
// 无论用户名不存在还是密码错误，都返回同一句提示
func (h *AuthHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	var user model.AdminUser
	if err := h.db.Where("username = ?", username).First(&user).Error; err != nil || !user.CheckPassword(password) {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"error": "用户名或密码错误",
		})
		return
	}

	token, err := h.sessions.Issue()
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"error": "服务器错误，请稍后再试",
		})
		return
	}

	maxAge := int(h.sessions.TTL().Seconds())
	c.SetCookie(session.CookieName, token, maxAge, "/", "", false, true)
	c.Redirect(http.StatusFound, "/admin")
}

// Logout 清除会话 Cookie 并跳回登录页
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie(session.CookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/login")
}
