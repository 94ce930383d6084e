package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test_secret_key_minimum_32_chars"

func init() {
	PasswordCost = bcrypt.MinCost
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("test123")
	require.NoError(t, err)
	assert.NotEqual(t, "test123", hash)

	assert.True(t, CheckPassword(hash, "test123"))
	assert.False(t, CheckPassword(hash, "wrong"))
	assert.False(t, CheckPassword("not-a-hash", "test123"))
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT(42, "alice", testSecret, time.Hour)
	require.NoError(t, err)

	claims, err := ValidateJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.ExpiresAt.Time.After(time.Now()))
	assert.True(t, claims.ExpiresAt.Time.Before(time.Now().Add(time.Hour+time.Minute)))
}

func TestValidateJWT_Invalid(t *testing.T) {
	expired, err := GenerateJWT(1, "bob", testSecret, -time.Minute)
	require.NoError(t, err)

	otherSecret, err := GenerateJWT(1, "bob", "another_secret_key_of_enough_len", time.Hour)
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1})
	noneToken, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "invalid.token.here"},
		{"expired", expired},
		{"wrong secret", otherSecret},
		{"none algorithm", noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateJWT(tt.token, testSecret)
			assert.Error(t, err)
		})
	}
}

func TestGenerateRandomToken(t *testing.T) {
	a, err := GenerateRandomToken(32)
	require.NoError(t, err)
	b, err := GenerateRandomToken(32)
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
}

func TestNewCSRFToken(t *testing.T) {
	token := NewCSRFToken()
	_, err := uuid.Parse(token)
	assert.NoError(t, err)
	assert.NotEqual(t, token, NewCSRFToken())
}

func TestTokensEqual(t *testing.T) {
	assert.True(t, TokensEqual("abc", "abc"))
	assert.False(t, TokensEqual("abc", "abd"))
	assert.False(t, TokensEqual("", ""))
	assert.False(t, TokensEqual("abc", ""))
}

func TestContainsMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"alice", false},
		{"Tom & Jerry", false},
		{"a < b", false},
		{"it's \"quoted\"", false},
		{"<b>bob</b>", true},
		{"<script>alert(1)</script>carol", true},
		{"<!-- hidden -->", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ContainsMarkup(tt.in), tt.in)
	}
}
