package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName 管理后台会话 Cookie 的名称
const CookieName = "admin_session"

var ErrInvalidToken = errors.New("无效的会话令牌")

// Claims 会话令牌的载荷，只携带单一的管理员角色
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager 负责签发和校验管理后台的会话令牌
type Manager struct {
	secret []byte
	issuer string
	expiry time.Duration
}

// NewManager 创建会话管理器
func NewManager(secret, issuer string, expirationHours int) *Manager {
	return &Manager{
		secret: []byte(secret),
		issuer: issuer,
		expiry: time.Duration(expirationHours) * time.Hour,
	}
}

// TTL 返回会话的有效期
func (m *Manager) TTL() time.Duration {
	return m.expiry
}

// Issue 签发一个带过期时间的会话令牌
func (m *Manager) Issue() (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify 校验会话令牌的签名、有效期和角色
func (m *Manager) Verify(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("意外的签名方法: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if claims.Role != "admin" {
		return ErrInvalidToken
	}
	return nil
}
