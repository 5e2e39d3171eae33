package controller

import (
	"errors"
	"music_exam_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 把领域错误映射成 HTTP 状态码
func respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrExamNotFound),
		errors.Is(err, util.ErrQuestionNotFound),
		errors.Is(err, util.ErrAnswerNotFound),
		errors.Is(err, util.ErrAttemptNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	case errors.Is(err, util.ErrExamNotPublished):
		util.Error(ctx, http.StatusForbidden, err.Error())
	case errors.Is(err, util.ErrAttemptSubmitted),
		errors.Is(err, util.ErrAttemptNotSubmitted),
		errors.Is(err, util.ErrVersionConflict):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrInvalidVariant),
		errors.Is(err, util.ErrInvalidPayload),
		errors.Is(err, util.ErrPointsOutOfRange):
		util.BadRequest(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}

func paramID(ctx *gin.Context, name string) (uint, bool) {
	id := util.MustParseUint(ctx.Param(name))
	if id == 0 {
		util.BadRequest(ctx, "invalid "+name)
		return 0, false
	}
	return id, true
}
