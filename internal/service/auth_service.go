package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/identity"
	"context"
	"errors"
	log "log/slog"
)

type AuthService interface {
	Register(ctx context.Context, in *dto.RegisterDTO) (*dto.AuthResultDTO, error)
	Login(ctx context.Context, in *dto.CredentialDTO) (*dto.AuthResultDTO, error)
	Verify(ctx context.Context, idToken string) (*dto.AuthUserDTO, error)
	Logout(ctx context.Context, token string) error
}

type authServiceImpl struct {
	provider     identity.Provider
	userSvc      UserService
	analyticsSvc AnalyticsService
}

func NewAuthService(provider identity.Provider, userSvc UserService, analyticsSvc AnalyticsService) AuthService {
	return &authServiceImpl{
		provider:     provider,
		userSvc:      userSvc,
		analyticsSvc: analyticsSvc,
	}
}

// Register 在身份提供方建号，再落本地档案
func (s *authServiceImpl) Register(ctx context.Context, in *dto.RegisterDTO) (*dto.AuthResultDTO, error) {
	id, err := s.provider.CreateUser(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	if _, _, err = s.userSvc.CreateOrUpdateUser(ctx, id); err != nil {
		return nil, err
	}

	token, err := s.provider.CustomToken(ctx, id.UID)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	s.analyticsSvc.Record(ctx, id.UID, consts.EventUserRegistered, map[string]any{"provider": s.provider.Name()})
	return &dto.AuthResultDTO{User: toAuthUser(id), CustomToken: token}, nil
}

func (s *authServiceImpl) Login(ctx context.Context, in *dto.CredentialDTO) (*dto.AuthResultDTO, error) {
	id, err := s.provider.SignIn(ctx, in.Email, in.Password)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	if _, _, err = s.userSvc.CreateOrUpdateUser(ctx, id); err != nil {
		log.WarnContext(ctx, "failed to sync user profile on login", "uid", id.UID, "err", err)
	}

	token, err := s.provider.CustomToken(ctx, id.UID)
	if err != nil {
		return nil, mapIdentityError(err)
	}
	s.analyticsSvc.Record(ctx, id.UID, consts.EventUserLogin, map[string]any{"provider": s.provider.Name()})
	return &dto.AuthResultDTO{User: toAuthUser(id), CustomToken: token}, nil
}

// Verify 校验失败返回 401 语义的 ErrIDTokenInvalid
func (s *authServiceImpl) Verify(ctx context.Context, idToken string) (*dto.AuthUserDTO, error) {
	id, err := s.provider.VerifyToken(ctx, idToken)
	if err != nil {
		if errors.Is(err, identity.ErrUnavailable) {
			return nil, ErrProviderUnavailable
		}
		return nil, ErrIDTokenInvalid
	}
	if _, _, err = s.userSvc.CreateOrUpdateUser(ctx, id); err != nil {
		log.WarnContext(ctx, "failed to sync user profile on verify", "uid", id.UID, "err", err)
	}
	return toAuthUser(id), nil
}

func (s *authServiceImpl) Logout(ctx context.Context, token string) error {
	return mapIdentityError(s.provider.RevokeToken(ctx, token))
}

func toAuthUser(id *identity.Identity) *dto.AuthUserDTO {
	return &dto.AuthUserDTO{
		UID:           id.UID,
		Email:         id.Email,
		DisplayName:   id.DisplayName,
		PhotoURL:      id.PhotoURL,
		EmailVerified: id.EmailVerified,
	}
}
