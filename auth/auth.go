package auth

import (
	"fmt"
	"os"
	"strings"
	"time"

	"tttserver/models"

	jwt "github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// トークンの有効期限
const tokenLifetime = 30 * time.Minute

// JwtKey は署名に使用するシークレットキー。本番環境では必ず環境変数で設定する。
var JwtKey = []byte(jwtSecret())

func jwtSecret() string {
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		return secret
	}
	return "change-me-in-production"
}

// GenerateToken はユーザーのアクセストークンを発行する
func GenerateToken(user *models.User) (string, error) {
	claims := &models.MyClaims{
		UserID:   user.ID,
		Username: user.Username,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(tokenLifetime).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(JwtKey)
}

// ParseToken はトークンを検証しクレームを取り出す。"Bearer "プレフィックスは除去する。
func ParseToken(tokenString string) (*models.MyClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	claims := &models.MyClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return JwtKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is invalid")
	}
	return claims, nil
}

// HashPassword はbcryptでパスワードをハッシュ化する
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword は平文パスワードとハッシュを照合する
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
