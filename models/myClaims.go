package models

import (
	jwt "github.com/dgrijalva/jwt-go"
)

// MyClaims はJWTトークンに内包するクレーム
type MyClaims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.StandardClaims
}
