package middleware

import (
	"net/http"

	"clicklink-admin/pkg/session"

	"github.com/gin-gonic/gin"
)

// RequireSession 管理后台会话中间件
// 未携带或携带无效会话 Cookie 的请求一律 302 到登录页，不返回数据
func RequireSession(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(session.CookieName)
		if err != nil || sessions.Verify(token) != nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
