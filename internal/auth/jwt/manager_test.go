package jwt

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-length-32b"

func TestManager_IssueAndVerify(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	token, err := manager.Issue("user-1", "a@x.com", "alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Verify(token)
	require.NoError(t, err)

	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestManager_Issue_EmptySubject(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	_, err := manager.Issue("", "a@x.com", "")
	assert.Error(t, err)
}

func TestManager_Verify_Expired(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	// 直接构造一个已过期的令牌
	expired := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		Email: "a@x.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	tokenString, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestManager_Verify_WrongKey(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)
	other := NewManager("another-secret-with-enough-length", "test", time.Hour)

	token, err := other.Issue("user-1", "a@x.com", "")
	require.NoError(t, err)

	_, err = manager.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Verify_Malformed(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	_, err := manager.Verify("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestManager_Verify_RejectsNoneAlgorithm(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	// alg=none 的令牌必须被拒绝，不能被当作有效签名
	unsigned := jwtlib.NewWithClaims(jwtlib.SigningMethodNone, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := unsigned.SignedString(jwtlib.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestManager_Verify_MissingExpiry(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	// 缺少 exp 的声明集不是有效令牌
	noExp := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: "user-1"},
	})
	tokenString, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.Error(t, err)
}

func TestManager_Verify_MissingSubject(t *testing.T) {
	manager := NewManager(testSecret, "test", time.Hour)

	noSub := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, Claims{
		Email: "a@x.com",
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := noSub.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = manager.Verify(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
