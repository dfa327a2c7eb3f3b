package service

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/model"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/identity"
	"InstaCap/internal/repository"
	"context"
	"errors"
	log "log/slog"
	"time"
)

type UserService interface {
	CreateOrUpdateUser(ctx context.Context, id *identity.Identity) (*model.User, bool, error)
	GetProfile(ctx context.Context, uid string) (*model.User, error)
	UpdateProfile(ctx context.Context, uid string, in *dto.ProfileUpdateDTO) (*model.User, error)
	ChangePassword(ctx context.Context, uid string, in *dto.ChangePasswordDTO) error
	ExportUserData(ctx context.Context, uid string) (*dto.UserExportDTO, error)
	DeleteUser(ctx context.Context, uid string) (*dto.DeleteAccountDTO, error)
}

type userServiceImpl struct {
	userRepo    repository.UserRepo
	statsRepo   repository.UserStatsRepo
	captionRepo repository.CaptionRepo
	provider    identity.Provider
}

func NewUserService(
	userRepo repository.UserRepo,
	statsRepo repository.UserStatsRepo,
	captionRepo repository.CaptionRepo,
	provider identity.Provider,
) UserService {
	return &userServiceImpl{
		userRepo:    userRepo,
		statsRepo:   statsRepo,
		captionRepo: captionRepo,
		provider:    provider,
	}
}

// CreateOrUpdateUser 首次创建时同时建立零值统计
func (s *userServiceImpl) CreateOrUpdateUser(ctx context.Context, id *identity.Identity) (*model.User, bool, error) {
	user, created, err := s.userRepo.CreateOrUpdateUser(ctx, &repository.UserUpsert{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
	})
	if err != nil {
		return nil, false, err
	}
	if created {
		if _, err = s.statsRepo.CreateUserStats(ctx, id.UID); err != nil {
			// 读取统计时会惰性补建
			log.WarnContext(ctx, "failed to create user stats", "uid", id.UID, "err", err)
		}
	}
	return user, created, nil
}

// GetProfile 档案缺失时从身份提供方补建
func (s *userServiceImpl) GetProfile(ctx context.Context, uid string) (*model.User, error) {
	user, err := s.userRepo.GetUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	id, err := s.provider.GetUser(ctx, uid)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, mapIdentityError(err)
	}
	user, _, err = s.CreateOrUpdateUser(ctx, id)
	return user, err
}

func (s *userServiceImpl) UpdateProfile(ctx context.Context, uid string, in *dto.ProfileUpdateDTO) (*model.User, error) {
	upd := &repository.ProfileUpdate{
		DisplayName: in.DisplayName,
		PhotoURL:    in.PhotoURL,
		Bio:         in.Bio,
	}
	if p := in.Preferences; p != nil {
		upd.Theme = p.Theme
		upd.Language = p.Language
		upd.DefaultTone = p.DefaultTone
		if n := p.Notifications; n != nil {
			upd.NewFeatures = n.NewFeatures
			upd.Tips = n.Tips
			upd.Marketing = n.Marketing
		}
	}

	user, err := s.userRepo.UpdateProfile(ctx, uid, upd)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if in.DisplayName != nil || in.PhotoURL != nil {
		if err = s.provider.UpdateUser(ctx, uid, in.DisplayName, in.PhotoURL); err != nil {
			log.WarnContext(ctx, "failed to sync profile to identity provider", "uid", uid, "err", err)
		}
	}
	return user, nil
}

// ChangePassword 由身份提供方校验当前密码并更新
func (s *userServiceImpl) ChangePassword(ctx context.Context, uid string, in *dto.ChangePasswordDTO) error {
	if err := s.provider.ChangePassword(ctx, uid, in.CurrentPassword, in.NewPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return ErrWrongPassword
		}
		return mapIdentityError(err)
	}
	log.InfoContext(ctx, "password changed", "uid", uid, "provider", s.provider.Name())
	return nil
}

// ExportUserData 档案、偏好、文案与统计一并导出
func (s *userServiceImpl) ExportUserData(ctx context.Context, uid string) (*dto.UserExportDTO, error) {
	user, err := s.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	captions, err := s.captionRepo.ExportUserCaptions(ctx, uid, consts.MaxExportCaptions+1)
	if err != nil {
		return nil, err
	}
	truncated := len(captions) > consts.MaxExportCaptions
	if truncated {
		captions = captions[:consts.MaxExportCaptions]
	}

	stats, err := s.statsRepo.GetOrCreateUserStats(ctx, uid)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	deriveStats(stats, now)

	out := &dto.UserExportDTO{
		Profile:     user,
		Preferences: user.Preferences,
		Captions:    make([]*dto.CaptionDTO, 0, len(captions)),
		Statistics:  stats,
		Truncated:   truncated,
		ExportedAt:  now,
	}
	for _, c := range captions {
		out.Captions = append(out.Captions, ToCaptionDTO(c))
	}
	return out, nil
}

// DeleteUser 依次删除文案、统计、档案、身份，任一阶段失败即返回该阶段
func (s *userServiceImpl) DeleteUser(ctx context.Context, uid string) (*dto.DeleteAccountDTO, error) {
	out := &dto.DeleteAccountDTO{}
	var err error

	if out.CaptionsDeleted, err = s.captionRepo.DeleteUserCaptions(ctx, uid); err != nil {
		return nil, newCascadeError(StageCaptions, err)
	}
	if out.StatsDeleted, err = s.statsRepo.DeleteUserStats(ctx, uid); err != nil {
		return nil, newCascadeError(StageStats, err)
	}
	if out.ProfileDeleted, err = s.userRepo.DeleteUser(ctx, uid); err != nil {
		return nil, newCascadeError(StageProfile, err)
	}
	if err = s.provider.DeleteUser(ctx, uid); err != nil && !errors.Is(err, identity.ErrUserNotFound) {
		return nil, newCascadeError(StageIdentity, err)
	}

	log.InfoContext(ctx, "user deleted",
		"uid", uid,
		"captions", out.CaptionsDeleted,
		"stats", out.StatsDeleted,
		"profile", out.ProfileDeleted)
	return out, nil
}

// mapIdentityError 身份提供方错误转业务错误
func mapIdentityError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, identity.ErrInvalidToken), errors.Is(err, identity.ErrTokenExpired):
		return ErrTokenRejected
	case errors.Is(err, identity.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, identity.ErrEmailExists):
		return ErrEmailExists
	case errors.Is(err, identity.ErrInvalidCredentials):
		return ErrInvalidCredentials
	case errors.Is(err, identity.ErrWeakPassword):
		return ErrWeakPassword
	case errors.Is(err, identity.ErrUnavailable):
		return ErrProviderUnavailable
	}
	return err
}
