package identity

import (
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/security"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountStore 本地账号存储
type AccountStore interface {
	CreateAccount(ctx context.Context, account *model.Account) error
	GetAccountByEmail(ctx context.Context, email string) (*model.Account, error)
	GetAccountByUID(ctx context.Context, uid string) (*model.Account, error)
	UpdateAccount(ctx context.Context, uid string, displayName, photoURL *string) error
	UpdatePassword(ctx context.Context, uid, passwordHash string) error
	DeleteAccount(ctx context.Context, uid string) (int64, error)
}

// Blacklist 登出 Token 的吊销表
type Blacklist interface {
	Revoke(ctx context.Context, signature string, ttl time.Duration) error
	IsRevoked(ctx context.Context, signature string) (bool, error)
}

type localProvider struct {
	accounts  AccountStore
	issuer    *security.TokenIssuer
	blacklist Blacklist
	// isDuplicate 判断存储层的唯一键冲突
	isDuplicate func(error) bool
}

// NewLocalProvider 自托管身份：bcrypt 存密码，HS256 签发 Token
func NewLocalProvider(accounts AccountStore, issuer *security.TokenIssuer, blacklist Blacklist, isDuplicate func(error) bool) Provider {
	if isDuplicate == nil {
		isDuplicate = func(error) bool { return false }
	}
	return &localProvider{
		accounts:    accounts,
		issuer:      issuer,
		blacklist:   blacklist,
		isDuplicate: isDuplicate,
	}
}

func (p *localProvider) Name() string {
	return "local"
}

func (p *localProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	claims, err := p.issuer.ValidateToken(token)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	if p.blacklist != nil {
		signature, _ := security.ExtractSignature(token)
		revoked, err := p.blacklist.IsRevoked(ctx, signature)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return &Identity{UID: claims.UID, Email: claims.Email, DisplayName: claims.DisplayName}, nil
}

func (p *localProvider) GetUser(ctx context.Context, uid string) (*Identity, error) {
	account, err := p.accounts.GetAccountByUID(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account == nil || account.Disabled {
		return nil, ErrUserNotFound
	}
	return fromAccount(account), nil
}

func (p *localProvider) CreateUser(ctx context.Context, email, password, displayName string) (*Identity, error) {
	email = normalizeEmail(email)
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, ErrWeakPassword
	}

	now := time.Now()
	account := &model.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = p.accounts.CreateAccount(ctx, account); err != nil {
		if p.isDuplicate(err) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return fromAccount(account), nil
}

func (p *localProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	account, err := p.accounts.GetAccountByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account == nil || account.Disabled {
		return nil, ErrInvalidCredentials
	}
	if err = security.CheckPasswordHash(password, account.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	return fromAccount(account), nil
}

// CustomToken 本地模式下直接签发访问 Token
func (p *localProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	account, err := p.accounts.GetAccountByUID(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account == nil {
		return "", ErrUserNotFound
	}
	return p.issuer.GenerateToken(account.UID, account.Email, account.DisplayName)
}

func (p *localProvider) UpdateUser(ctx context.Context, uid string, displayName, photoURL *string) error {
	if displayName == nil && photoURL == nil {
		return nil
	}
	if err := p.accounts.UpdateAccount(ctx, uid, displayName, photoURL); err != nil {
		return fmt.Errorf("%w: %v", ErrUserNotFound, err)
	}
	return nil
}

// ChangePassword 校验当前密码后写入新的哈希
func (p *localProvider) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	account, err := p.accounts.GetAccountByUID(ctx, uid)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if account == nil || account.Disabled {
		return ErrUserNotFound
	}
	if err = security.CheckPasswordHash(currentPassword, account.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return ErrWeakPassword
	}
	if err = p.accounts.UpdatePassword(ctx, uid, hash); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (p *localProvider) DeleteUser(ctx context.Context, uid string) error {
	if _, err := p.accounts.DeleteAccount(ctx, uid); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// RevokeToken 签名加入黑名单直到 Token 过期
func (p *localProvider) RevokeToken(ctx context.Context, token string) error {
	claims, err := p.issuer.ValidateToken(token)
	if err != nil {
		return ErrInvalidToken
	}
	if p.blacklist == nil {
		return nil
	}
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return ErrInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err = p.blacklist.Revoke(ctx, signature, ttl); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func fromAccount(a *model.Account) *Identity {
	return &Identity{
		UID:           a.UID,
		Email:         a.Email,
		DisplayName:   a.DisplayName,
		PhotoURL:      a.PhotoURL,
		EmailVerified: false,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
