package service

import (
	"InstaCap/internal/pkg/util"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
)

var (
	ErrParamInvalid        = errors.New("invalid request parameters")
	ErrCaptionRequired     = errors.New("userId and content are required")
	ErrCaptionTooLong      = errors.New("caption content exceeds 2000 characters")
	ErrCaptionNotFound     = errors.New("caption not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailExists         = errors.New("email already exists")
	ErrWeakPassword        = errors.New("password must be at least 6 characters")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrWrongPassword       = errors.New("current password is incorrect")
	ErrMissingToken        = errors.New("no token provided")
	ErrTokenRejected       = errors.New("invalid or expired token")
	ErrIDTokenInvalid      = errors.New("invalid id token")
	ErrForbidden           = errors.New("not allowed to access this resource")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrRateLimited         = errors.New("too many requests, please try again later")
	ErrUnknownEngagement   = errors.New("unknown engagement type")
	UnExpectedError        = errors.New("internal server error")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:          http.StatusBadRequest,
	ErrCaptionRequired:       http.StatusBadRequest,
	ErrCaptionTooLong:        http.StatusBadRequest,
	ErrCaptionNotFound:       http.StatusNotFound,
	ErrUserNotFound:          http.StatusNotFound,
	ErrEmailExists:           http.StatusBadRequest,
	ErrWeakPassword:          http.StatusBadRequest,
	ErrInvalidCredentials:    http.StatusUnauthorized,
	ErrWrongPassword:         http.StatusBadRequest,
	ErrMissingToken:          http.StatusUnauthorized,
	ErrTokenRejected:         http.StatusForbidden,
	ErrIDTokenInvalid:        http.StatusUnauthorized,
	ErrForbidden:             http.StatusForbidden,
	ErrProviderUnavailable:   http.StatusServiceUnavailable,
	ErrRateLimited:           http.StatusTooManyRequests,
	ErrUnknownEngagement:     http.StatusBadRequest,
	util.ErrValidation:       http.StatusBadRequest,
	util.ErrFileNotSupported: http.StatusBadRequest,
	util.ErrFileTooLarge:     http.StatusRequestEntityTooLarge,
	util.ErrImageFetch:       http.StatusBadRequest,
	UnExpectedError:          http.StatusInternalServerError,
}

// StatusOf 按 errors.Is 匹配，包装过的错误同样生效
func StatusOf(err error) (int, bool) {
	if code, ok := ErrorMap[err]; ok {
		return code, true
	}
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			return code, true
		}
	}
	return http.StatusInternalServerError, false
}

// 删除用户的级联阶段
const (
	StageCaptions = "captions"
	StageStats    = "stats"
	StageProfile  = "profile"
	StageIdentity = "identity"
)

// CascadeError 级联删除在某个阶段失败
type CascadeError struct {
	Stage string
	Err   error
}

func newCascadeError(stage string, err error) *CascadeError {
	return &CascadeError{Stage: stage, Err: pkgerrors.Wrapf(err, "delete user stage %s", stage)}
}

func (e *CascadeError) Error() string {
	return fmt.Sprintf("failed to delete user at stage %s: %v", e.Stage, e.Err)
}

func (e *CascadeError) Unwrap() error {
	return e.Err
}
