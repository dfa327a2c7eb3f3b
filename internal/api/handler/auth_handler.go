package handler

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/pkg/util"
	"InstaCap/internal/service"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authSvc service.AuthService
}

func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{
		authSvc: authSvc,
	}
}

func (s *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.authSvc.Register(context.WithoutCancel(c.Request.Context()), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{
		"message":     "User registered successfully",
		"user":        res.User,
		"customToken": res.CustomToken,
	})
}

func (s *AuthHandler) Login(c *gin.Context) {
	var req dto.CredentialDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	res, err := s.authSvc.Login(context.WithoutCancel(c.Request.Context()), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{
		"message":     "Login successful",
		"user":        res.User,
		"customToken": res.CustomToken,
	})
}

func (s *AuthHandler) Verify(c *gin.Context) {
	var req dto.VerifyDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	user, err := s.authSvc.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"user": user})
}

func (s *AuthHandler) Logout(c *gin.Context) {
	token, _ := bearer(c)
	if err := s.authSvc.Logout(context.WithoutCancel(c.Request.Context()), token); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "Logged out successfully"})
}

func bearer(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")), true
}
