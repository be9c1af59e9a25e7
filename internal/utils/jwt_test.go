package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop_back_end/internal/models"
)

func TestGenerateAndParseJWT(t *testing.T) {
	user := models.User{ID: 42, Email: "a@x.com"}

	token, err := GenerateJWT(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userID, email, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), userID)
	assert.Equal(t, "a@x.com", email)
}

func TestParseJWTRejectsGarbage(t *testing.T) {
	_, _, err := ParseJWT("pas.un.token")
	assert.Error(t, err)
}

func TestParseJWTRejectsBadSignature(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": float64(1),
		"email":   "a@x.com",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("autre_secret"))
	require.NoError(t, err)

	_, _, err = ParseJWT(signed)
	assert.Error(t, err)
}

func TestParseJWTRejectsExpiredToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": float64(1),
		"email":   "a@x.com",
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	require.NoError(t, err)

	_, _, err = ParseJWT(signed)
	assert.Error(t, err)
}

func TestParseJWTRejectsMissingUserID(t *testing.T) {
	claims := jwt.MapClaims{
		"email": "a@x.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(jwtSecret())
	require.NoError(t, err)

	_, _, err = ParseJWT(signed)
	assert.Error(t, err)
}
