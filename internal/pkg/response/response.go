package response

import (
	"InstaCap/internal/api/config"
	"InstaCap/internal/service"
	stdjson "encoding/json"
	"errors"
	log "log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Success 成功返回封装，payload 平铺在 success 旁
func Success(c *gin.Context, payload gin.H) {
	JSON(c, http.StatusOK, payload)
}

// Created 201
func Created(c *gin.Context, payload gin.H) {
	JSON(c, http.StatusCreated, payload)
}

func JSON(c *gin.Context, status int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

// Error 处理错误
func Error(c *gin.Context, err error) {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fail(c, http.StatusBadRequest, "Invalid request parameters", err)
		return
	}

	var unmarshalTypeError *json.UnmarshalTypeError
	var stdTypeError *stdjson.UnmarshalTypeError
	var syntaxError *stdjson.SyntaxError
	if errors.As(err, &unmarshalTypeError) || errors.As(err, &stdTypeError) || errors.As(err, &syntaxError) {
		fail(c, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	code, ok := service.StatusOf(err)
	if !ok {
		log.ErrorContext(c.Request.Context(), "Error", "err", err)
		message := "Internal server error"
		var ce *service.CascadeError
		if errors.As(err, &ce) {
			message = "Failed to delete user at stage: " + ce.Stage
		}
		fail(c, code, message, err)
		return
	}
	fail(c, code, err.Error(), nil)
}

func fail(c *gin.Context, status int, message string, detail error) {
	body := gin.H{
		"success": false,
		"error":   http.StatusText(status),
		"message": message,
	}
	if detail != nil && config.Cfg != nil && config.Cfg.Server.IsDevelopment() {
		body["detail"] = detail.Error()
	}
	c.AbortWithStatusJSON(status, body)
}
