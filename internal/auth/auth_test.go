// internal/auth/auth_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *TokenConfig {
	return &TokenConfig{
		Secret:     []byte("测试密钥-仅用于单元测试"),
		Expiration: time.Hour,
	}
}

func TestGenerateAndParseToken(t *testing.T) {
	cfg := testConfig()

	tokenString, err := GenerateToken("admin", cfg)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	token, err := ParseToken(tokenString, cfg)
	require.NoError(t, err)

	assert.Equal(t, "admin", token.Subject)
	assert.Greater(t, token.ExpiresAt, time.Now().Unix())
}

func TestGenerateToken_RequiresSecret(t *testing.T) {
	_, err := GenerateToken("admin", &TokenConfig{Expiration: time.Hour})
	assert.Error(t, err)
}

func TestParseToken_RejectsTampering(t *testing.T) {
	cfg := testConfig()

	tokenString, err := GenerateToken("admin", cfg)
	require.NoError(t, err)

	_, err = ParseToken(tokenString+"x", cfg)
	assert.Error(t, err)
}

func TestParseToken_RejectsWrongSecret(t *testing.T) {
	cfg := testConfig()

	tokenString, err := GenerateToken("admin", cfg)
	require.NoError(t, err)

	other := &TokenConfig{Secret: []byte("另一个密钥"), Expiration: time.Hour}
	_, err = ParseToken(tokenString, other)
	assert.Error(t, err)
}

func TestParseToken_RejectsExpired(t *testing.T) {
	cfg := &TokenConfig{
		Secret:     []byte("测试密钥"),
		Expiration: -time.Minute,
	}

	tokenString, err := GenerateToken("admin", cfg)
	require.NoError(t, err)

	_, err = ParseToken(tokenString, cfg)
	assert.Error(t, err)
}

func TestParseToken_RejectsGarbage(t *testing.T) {
	cfg := testConfig()

	for _, bad := range []string{"", "没有分隔符", "a.b.c", "!!!.???"} {
		_, err := ParseToken(bad, cfg)
		assert.Error(t, err, "应当拒绝: %q", bad)
	}
}

func TestGenerateSecureKey(t *testing.T) {
	key, err := GenerateSecureKey(0)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	other, err := GenerateSecureKey(16)
	require.NoError(t, err)
	assert.Len(t, other, 16)
	assert.NotEqual(t, key[:16], other)
}
