package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMaker() *MakerImpl {
	return NewMaker("access_secret_1234567890", "refresh_secret_1234567890",
		15*time.Minute, 24*time.Hour)
}

func TestMaker_GenerateAndParseAccessToken_ValidCases(t *testing.T) {
	maker := newTestMaker()

	tests := []struct {
		name     string
		uid      string
		username string
		email    string
		role     string
	}{
		{
			name:     "admin user",
			uid:      "8d7f9df2-9f4b-4f0a-9a3e-111111111111",
			username: "admin_user",
			email:    "admin@example.com",
			role:     "admin",
		},
		{
			name:     "student",
			uid:      "8d7f9df2-9f4b-4f0a-9a3e-222222222222",
			username: "student_user",
			email:    "student@example.com",
			role:     "student",
		},
		{
			name:     "instructor",
			uid:      "8d7f9df2-9f4b-4f0a-9a3e-333333333333",
			username: "instructor_user",
			email:    "instructor@example.com",
			role:     "instructor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateAccessToken(tt.uid, tt.username, tt.email, tt.role)
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := maker.ParseAccessToken(token)
			require.NoError(t, err)

			assert.Equal(t, tt.uid, claims.UserUID)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
			assert.WithinDuration(t, time.Now(), claims.IssuedAt.Time, time.Second)
			assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Second)
		})
	}
}

func TestMaker_ParseAccessToken_InvalidTokens(t *testing.T) {
	maker := newTestMaker()

	validToken, err := maker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{
			name:  "empty token",
			token: "",
		},
		{
			name:  "malformed token",
			token: "invalid.token.here",
		},
		{
			name:  "expired token",
			token: createExpiredToken(t),
		},
		{
			name:  "token signed with another secret",
			token: createTokenWithWrongSecret(t),
		},
		{
			name:  "tampered token",
			token: validToken + "tampered",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseAccessToken(tt.token)
			assert.Error(t, err)
			assert.Nil(t, claims)
		})
	}
}

func TestMaker_AccessAndRefreshSecretsAreSeparate(t *testing.T) {
	maker := newTestMaker()

	access, err := maker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)
	refresh, err := maker.GenerateRefreshToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)

	// access-токен не должен проходить проверку refresh-секретом и наоборот
	claims, err := maker.ParseRefreshToken(access)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker.ParseAccessToken(refresh)
	assert.Error(t, err)
	assert.Nil(t, claims)

	claims, err = maker.ParseRefreshToken(refresh)
	assert.NoError(t, err)
	assert.NotNil(t, claims)
}

func TestMaker_ResetToken(t *testing.T) {
	maker := newTestMaker()

	token, err := maker.GenerateResetToken("reset@example.com")
	require.NoError(t, err)

	email, err := maker.ParseResetToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reset@example.com", email)

	_, err = maker.ParseResetToken(token + "tampered")
	assert.Error(t, err)

	// access-токен подписан тем же секретом, но сбрасывать пароль им нельзя
	access, err := maker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)

	_, err = maker.ParseResetToken(access)
	assert.Error(t, err)
}

func createExpiredToken(t *testing.T) string {
	maker := NewMaker("access_secret_1234567890", "refresh_secret_1234567890",
		-time.Hour, -time.Hour)
	token, err := maker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)
	return token
}

func createTokenWithWrongSecret(t *testing.T) string {
	wrongMaker := NewMaker("wrong_secret_key", "wrong_refresh_key", 15*time.Minute, 24*time.Hour)
	token, err := wrongMaker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)
	return token
}

func TestMaker_TokenExpiration(t *testing.T) {
	maker := NewMaker("access_secret", "refresh_secret", 100*time.Millisecond, time.Hour)

	token, err := maker.GenerateAccessToken("uid", "testuser", "test@example.com", "student")
	require.NoError(t, err)

	claims, err := maker.ParseAccessToken(token)
	require.NoError(t, err)
	assert.NotNil(t, claims)

	time.Sleep(150 * time.Millisecond)

	_, err = maker.ParseAccessToken(token)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "expired")
}
