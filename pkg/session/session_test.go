package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	m := NewManager("secret", "clicklink-test", 1)

	token, err := m.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.NoError(t, m.Verify(token))
}

func TestVerify_RejectsTamperedToken(t *testing.T) {
	m := NewManager("secret", "clicklink-test", 1)

	token, err := m.Issue()
	require.NoError(t, err)

	assert.Error(t, m.Verify(token+"x"))
	assert.Error(t, m.Verify("not-a-token"))
	assert.Error(t, m.Verify(""))
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", "clicklink-test", 1)
	verifier := NewManager("secret-b", "clicklink-test", 1)

	token, err := issuer.Issue()
	require.NoError(t, err)

	assert.Error(t, verifier.Verify(token), "不同密钥签发的令牌应校验失败")
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	// 过期时间为负，签发即过期
	m := &Manager{secret: []byte("secret"), issuer: "clicklink-test", expiry: -1}

	token, err := m.Issue()
	require.NoError(t, err)

	assert.Error(t, m.Verify(token))
}
