package identity

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/pkg/logger"
	"context"
	"fmt"
	log "log/slog"
	"net/http"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/go-resty/resty/v2"
	"google.golang.org/api/option"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

type firebaseProvider struct {
	client       *auth.Client
	http         *resty.Client
	webAPIKey    string
	checkRevoked bool
}

// NewFirebaseProvider 使用服务账号初始化 Admin SDK；密码登录需要 web_api_key
func NewFirebaseProvider(ctx context.Context, cfg config.FirebaseConfig) (Provider, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}

	log.Info("Firebase identity provider initialized", "project", cfg.ProjectID)
	return &firebaseProvider{
		client:       client,
		http:         resty.New().SetTransport(logger.NewHTTPTransport("firebase", 2*time.Second)).SetTimeout(10 * time.Second),
		webAPIKey:    cfg.WebAPIKey,
		checkRevoked: cfg.CheckRevoked,
	}, nil
}

func (p *firebaseProvider) Name() string {
	return "firebase"
}

func (p *firebaseProvider) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	var (
		tok *auth.Token
		err error
	)
	if p.checkRevoked {
		tok, err = p.client.VerifyIDTokenAndCheckRevoked(ctx, token)
	} else {
		tok, err = p.client.VerifyIDToken(ctx, token)
	}
	if err != nil {
		return nil, mapFirebaseError(err)
	}

	id := &Identity{UID: tok.UID}
	if v, ok := tok.Claims["email"].(string); ok {
		id.Email = v
	}
	if v, ok := tok.Claims["name"].(string); ok {
		id.DisplayName = v
	}
	if v, ok := tok.Claims["picture"].(string); ok {
		id.PhotoURL = v
	}
	if v, ok := tok.Claims["email_verified"].(bool); ok {
		id.EmailVerified = v
	}
	return id, nil
}

func (p *firebaseProvider) GetUser(ctx context.Context, uid string) (*Identity, error) {
	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	return fromUserRecord(rec), nil
}

func (p *firebaseProvider) CreateUser(ctx context.Context, email, password, displayName string) (*Identity, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		EmailVerified(false)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	rec, err := p.client.CreateUser(ctx, params)
	if err != nil {
		return nil, mapFirebaseError(err)
	}
	return fromUserRecord(rec), nil
}

type signInResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

type signInError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn 通过 Identity Toolkit REST 接口校验密码
func (p *firebaseProvider) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	if p.webAPIKey == "" {
		return nil, fmt.Errorf("%w: web_api_key is not configured", ErrUnavailable)
	}

	var ok signInResponse
	var fail signInError
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("key", p.webAPIKey).
		SetBody(map[string]any{"email": email, "password": password, "returnSecureToken": true}).
		SetResult(&ok).
		SetError(&fail).
		Post(signInEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch {
	case resp.IsSuccess():
		return &Identity{UID: ok.LocalID, Email: ok.Email, DisplayName: ok.DisplayName}, nil
	case resp.StatusCode() == http.StatusBadRequest:
		switch fail.Error.Message {
		case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, fail.Error.Message)
	default:
		return nil, fmt.Errorf("%w: sign-in status %d", ErrUnavailable, resp.StatusCode())
	}
}

func (p *firebaseProvider) CustomToken(ctx context.Context, uid string) (string, error) {
	token, err := p.client.CustomToken(ctx, uid)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return token, nil
}

func (p *firebaseProvider) UpdateUser(ctx context.Context, uid string, displayName, photoURL *string) error {
	params := &auth.UserToUpdate{}
	changed := false
	if displayName != nil {
		params = params.DisplayName(*displayName)
		changed = true
	}
	if photoURL != nil {
		params = params.PhotoURL(*photoURL)
		changed = true
	}
	if !changed {
		return nil
	}
	_, err := p.client.UpdateUser(ctx, uid, params)
	return mapFirebaseError(err)
}

// ChangePassword 配置了 web_api_key 时先用当前密码登录校验
func (p *firebaseProvider) ChangePassword(ctx context.Context, uid, currentPassword, newPassword string) error {
	rec, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return mapFirebaseError(err)
	}
	if p.webAPIKey != "" {
		signed, err := p.SignIn(ctx, rec.Email, currentPassword)
		if err != nil {
			return err
		}
		if signed.UID != "" && signed.UID != uid {
			return ErrInvalidCredentials
		}
	} else {
		log.WarnContext(ctx, "web_api_key not configured, current password not verified", "uid", uid)
	}

	_, err = p.client.UpdateUser(ctx, uid, (&auth.UserToUpdate{}).Password(newPassword))
	return mapFirebaseError(err)
}

func (p *firebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	err := p.client.DeleteUser(ctx, uid)
	if auth.IsUserNotFound(err) {
		return nil
	}
	return mapFirebaseError(err)
}

// RevokeToken 吊销该用户的全部 refresh token
func (p *firebaseProvider) RevokeToken(ctx context.Context, token string) error {
	tok, err := p.client.VerifyIDToken(ctx, token)
	if err != nil {
		return mapFirebaseError(err)
	}
	return mapFirebaseError(p.client.RevokeRefreshTokens(ctx, tok.UID))
}

func fromUserRecord(rec *auth.UserRecord) *Identity {
	if rec == nil || rec.UserInfo == nil {
		return &Identity{}
	}
	return &Identity{
		UID:           rec.UID,
		Email:         rec.Email,
		DisplayName:   rec.DisplayName,
		PhotoURL:      rec.PhotoURL,
		EmailVerified: rec.EmailVerified,
	}
}

func mapFirebaseError(err error) error {
	switch {
	case err == nil:
		return nil
	case auth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case auth.IsIDTokenInvalid(err), auth.IsIDTokenRevoked(err), auth.IsUserDisabled(err):
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	case auth.IsEmailAlreadyExists(err):
		return ErrEmailExists
	case auth.IsUserNotFound(err):
		return ErrUserNotFound
	default:
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
}
