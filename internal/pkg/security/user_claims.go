package security

import (
	"github.com/golang-jwt/jwt/v5"
)

// UserClaims 本地签发 Token 中携带的身份信息
type UserClaims struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}
