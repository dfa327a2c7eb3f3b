package handler

import (
	"InstaCap/internal/api/dto"
	"InstaCap/internal/pkg/consts"
	"InstaCap/internal/pkg/response"
	"InstaCap/internal/pkg/util"
	"InstaCap/internal/service"
	"context"

	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsSvc: analyticsSvc,
	}
}

func (s *AnalyticsHandler) TrackEvent(c *gin.Context) {
	var req dto.AnalyticsEventDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	meta := &service.ClientMeta{
		SessionID: c.GetHeader("X-Session-ID"),
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	}
	event, err := s.analyticsSvc.Track(context.WithoutCancel(c.Request.Context()), c.GetString(consts.CtxUID), &req, meta)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"event": event})
}

// GetEvents ?range=1d|7d|30d
func (s *AnalyticsHandler) GetEvents(c *gin.Context) {
	var req dto.AnalyticsQueryDTO
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, err)
		return
	}
	if err := util.ValidateDTO(&req); err != nil {
		response.Error(c, err)
		return
	}

	report, err := s.analyticsSvc.ListEvents(c.Request.Context(), c.GetString(consts.CtxUID), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"data": report})
}
