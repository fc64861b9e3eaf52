package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"clicklink-admin/internal/calllog"
	"clicklink-admin/internal/middleware"
	"clicklink-admin/internal/model"
	"clicklink-admin/internal/registry"
	"clicklink-admin/pkg/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAdminPassword = "test-password"

// setupAdminTest 初始化完整的管理后台路由（登录 + 会话中间件 + 增删改查）
func setupAdminTest(t *testing.T) (*gin.Engine, *registry.Registry, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "无法连接到内存数据库")
	require.NoError(t, db.AutoMigrate(&model.RedirectLink{}, &model.APICallLog{}, &model.AdminUser{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	// 种入测试管理员
	adminUser := model.AdminUser{Username: "admin"}
	require.NoError(t, adminUser.SetPassword(testAdminPassword))
	require.NoError(t, db.Create(&adminUser).Error)

	logger := zap.NewNop().Sugar()
	reg := registry.NewRegistry(db, logger)
	recorder := calllog.NewRecorder(db, logger)
	sessions := session.NewManager("test-secret", "clicklink-test", 1)

	adminHandler := NewAdminHandler(reg, recorder, nil)
	authHandler := NewAuthHandler(db, sessions)

	router := gin.New()
	router.SetFuncMap(template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
	})
	router.LoadHTMLGlob("../../web/templates/*")

	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)
	router.GET("/logout", authHandler.Logout)

	admin := router.Group("/admin")
	admin.Use(middleware.RequireSession(sessions))
	{
		admin.GET("", adminHandler.Dashboard)
		admin.POST("/create", adminHandler.Create)
		admin.POST("/update", adminHandler.Update)
		admin.POST("/delete", adminHandler.Delete)
	}

	return router, reg, db
}

// loginCookie 走一遍真实的登录流程，返回会话 Cookie
func loginCookie(t *testing.T, router *gin.Engine) *http.Cookie {
	t.Helper()

	form := url.Values{"username": {"admin"}, "password": {testAdminPassword}}
	req, _ := http.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code, "登录成功应 302 到 /admin")
	require.Equal(t, "/admin", w.Header().Get("Location"))

	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == session.CookieName {
			require.True(t, cookie.HttpOnly, "会话 Cookie 应为 HttpOnly")
			return cookie
		}
	}
	t.Fatal("登录响应未设置会话 Cookie")
	return nil
}

func postForm(t *testing.T, router *gin.Engine, cookie *http.Cookie, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req, _ := http.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestAdmin_RedirectsWithoutSession 无会话 Cookie 的 /admin 请求应 302 到登录页
func TestAdmin_RedirectsWithoutSession(t *testing.T) {
	router, _, _ := setupAdminTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
	assert.NotContains(t, w.Body.String(), "clickId", "重定向响应不应泄露数据")
}

func TestAdmin_RejectsForgedCookie(t *testing.T) {
	router, _, _ := setupAdminTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "forged-token"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogin_WrongPassword(t *testing.T) {
	router, _, _ := setupAdminTest(t)

	form := url.Values{"username": {"admin"}, "password": {"wrong"}}
	w := postForm(t, router, nil, "/login", form)

	assert.Equal(t, http.StatusOK, w.Code, "失败时重新渲染登录页而非报错")
	assert.Contains(t, w.Body.String(), "用户名或密码错误")

	for _, cookie := range w.Result().Cookies() {
		assert.NotEqual(t, session.CookieName, cookie.Name, "失败时不应设置会话 Cookie")
	}
}

// TestLogin_UnknownUserSameMessage 用户名不存在和密码错误应返回同一句提示
func TestLogin_UnknownUserSameMessage(t *testing.T) {
	router, _, _ := setupAdminTest(t)

	form := url.Values{"username": {"nobody"}, "password": {"whatever"}}
	w := postForm(t, router, nil, "/login", form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "用户名或密码错误")
}

func TestDashboard_RendersWithSession(t *testing.T) {
	router, reg, _ := setupAdminTest(t)
	cookie := loginCookie(t, router)

	_, err := reg.Create("https://example.com/a", "张三")
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "/admin", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "张三")
	assert.Contains(t, w.Body.String(), "https://example.com/a")
}

func TestCreate_PersistsAndRedirects(t *testing.T) {
	router, _, db := setupAdminTest(t)
	cookie := loginCookie(t, router)

	form := url.Values{"redirectUrl": {"https://example.com/new"}, "userName": {"李四"}}
	w := postForm(t, router, cookie, "/admin/create", form)

	assert.Equal(t, http.StatusFound, w.Code, "成功后 302 回列表页，避免刷新重复提交")
	assert.Equal(t, "/admin", w.Header().Get("Location"))

	var link model.RedirectLink
	require.NoError(t, db.Where("user_name = ?", "李四").First(&link).Error)
	assert.Equal(t, "https://example.com/new", link.RedirectURL)
}

func TestCreate_InvalidURLRendersInlineError(t *testing.T) {
	router, _, db := setupAdminTest(t)
	cookie := loginCookie(t, router)

	form := url.Values{"redirectUrl": {"ftp://x"}, "userName": {"李四"}}
	w := postForm(t, router, cookie, "/admin/create", form)

	assert.Equal(t, http.StatusOK, w.Code, "校验失败重新渲染列表页")
	assert.Contains(t, w.Body.String(), "URL必须以http://或https://开头")

	var n int64
	require.NoError(t, db.Model(&model.RedirectLink{}).Count(&n).Error)
	assert.Equal(t, int64(0), n, "校验失败不应留下半行数据")
}

func TestUpdate_UnknownTokenRendersInlineError(t *testing.T) {
	router, _, _ := setupAdminTest(t)
	cookie := loginCookie(t, router)

	form := url.Values{
		"clickId":     {"1234567890123"},
		"redirectUrl": {"https://example.com/b"},
		"userName":    {"王五"},
	}
	w := postForm(t, router, cookie, "/admin/update", form)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "指定的链接不存在")
}

func TestDelete_RemovesAndRedirects(t *testing.T) {
	router, reg, db := setupAdminTest(t)
	cookie := loginCookie(t, router)

	created, err := reg.Create("https://example.com/a", "ab")
	require.NoError(t, err)

	form := url.Values{"clickId": {fmt.Sprintf("%d", created.ClickID)}}
	w := postForm(t, router, cookie, "/admin/delete", form)

	assert.Equal(t, http.StatusFound, w.Code)

	var n int64
	require.NoError(t, db.Model(&model.RedirectLink{}).Count(&n).Error)
	assert.Equal(t, int64(0), n)
}

func TestLogout_ClearsCookie(t *testing.T) {
	router, _, _ := setupAdminTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/logout", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, session.CookieName, cookies[0].Name)
	assert.True(t, cookies[0].MaxAge < 0, "登出应作废会话 Cookie")
}
