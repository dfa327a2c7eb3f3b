package handler

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/pkg/util"
	"InstaCap/internal/service"
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc  service.UserService
	statsSvc service.StatsService
}

func NewUserHandler(userSvc service.UserService, statsSvc service.StatsService) *UserHandler {
	return &UserHandler{
		userSvc:  userSvc,
		statsSvc: statsSvc,
	}
}

func (s *UserHandler) GetProfile(c *gin.Context) {
	user, err := s.userSvc.GetProfile(c.Request.Context(), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (s *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileUpdateDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := s.userSvc.UpdateProfile(context.WithoutCancel(c.Request.Context()), c.GetString(consts.CtxUID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

func (s *UserHandler) GetStats(c *gin.Context) {
	summary, err := s.statsSvc.GetSummary(c.Request.Context(), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": summary})
}

// GetActivity ?days=N，默认 30，最大 365
func (s *UserHandler) GetActivity(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			response.Error(c, service.ErrParamInvalid)
			return
		}
		days = n
	}

	activity, err := s.statsSvc.GetActivity(c.Request.Context(), c.GetString(consts.CtxUID), days)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": activity})
}

func (s *UserHandler) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	if err := s.userSvc.ChangePassword(context.WithoutCancel(c.Request.Context()), c.GetString(consts.CtxUID), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Password updated successfully"})
}

// ExportData 导出当前用户的全部数据
func (s *UserHandler) ExportData(c *gin.Context) {
	data, err := s.userSvc.ExportUserData(c.Request.Context(), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": data})
}

// DeleteAccount 级联删除，失败时返回出错的阶段
func (s *UserHandler) DeleteAccount(c *gin.Context) {
	res, err := s.userSvc.DeleteUser(context.WithoutCancel(c.Request.Context()), c.GetString(consts.CtxUID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"message": "Account deleted successfully",
		"data":    res,
	})
}
