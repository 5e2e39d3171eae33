package controller

import (
	"music_exam_backend/internal/service"
	"music_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	Service *service.AttemptService
}

func NewAttemptController(svc *service.AttemptService) *AttemptController {
	return &AttemptController{Service: svc}
}

// @Summary 开始作答
// @Description 已有未提交的作答时直接返回该作答
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/attempts [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	examID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Service.StartAttempt(examID, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 获取作答详情
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id} [get]
func (c *AttemptController) GetAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	attempt, err := c.Service.GetAttempt(id, user.UserID, user.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 保存答案
// @Description 作答已提交时视为重新提交，该题重置为未评分并立即重新评分
// @Tags 作答
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Param questionId path int true "题目ID"
// @Param body body service.SaveAnswerReq true "答案"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers/{questionId} [put]
func (c *AttemptController) SaveAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	questionID, ok := paramID(ctx, "questionId")
	if !ok {
		return
	}

	var req service.SaveAnswerReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	res, err := c.Service.SaveAnswer(ctx.Request.Context(), id, questionID, user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, res)
}

// @Summary 提交作答
// @Description 提交后立即对所有未评分答案执行自动评分，并返回每题的评分结果
// @Tags 作答
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response{data=grading.BatchResult}
// @Router /api/attempts/{id}/submit [post]
func (c *AttemptController) SubmitAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	batch, err := c.Service.SubmitAttempt(ctx.Request.Context(), id, user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, batch)
}
