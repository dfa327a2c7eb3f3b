package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidToken       = errors.New("invalid identity token")
	ErrTokenExpired       = errors.New("identity token expired")
	ErrUserNotFound       = errors.New("identity user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password too weak")
	ErrUnavailable        = errors.New("identity provider unavailable")
)

// Identity 身份提供方返回的用户
type Identity struct {
	UID           string `json:"uid"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	PhotoURL      string `json:"photoURL,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

// Provider 身份提供方；Firebase 与本地实现可互换
type Provider interface {
	Name() string
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	GetUser(ctx context.Context, uid string) (*Identity, error)
	CreateUser(ctx context.Context, email, password, displayName string) (*Identity, error)
	SignIn(ctx context.Context, email, password string) (*Identity, error)
	CustomToken(ctx context.Context, uid string) (string, error)
	UpdateUser(ctx context.Context, uid string, displayName, photoURL *string) error
	ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error
	DeleteUser(ctx context.Context, uid string) error
	RevokeToken(ctx context.Context, token string) error
}
