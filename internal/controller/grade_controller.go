package controller

import (
	"music_exam_backend/internal/service"
	"music_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type GradeController struct {
	GradeService   *service.GradeService
	AttemptService *service.AttemptService
}

func NewGradeController(gradeService *service.GradeService, attemptService *service.AttemptService) *GradeController {
	return &GradeController{GradeService: gradeService, AttemptService: attemptService}
}

// @Summary 列出待人工评分的作答（按试卷）
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response{data=util.PageResponse}
// @Router /api/teacher/exams/{id}/attempts/pending-grading [get]
func (c *GradeController) ListPendingGrading(ctx *gin.Context) {
	examID, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	page, limit := util.ParsePage(ctx.Query("page"), ctx.Query("limit"))

	attempts, total, err := c.AttemptService.ListPendingGrading(examID, page, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Paged(ctx, attempts, total, page, limit)
}

// @Summary 教师对单题人工评分
// @Description 覆盖该题自动评分结果，随后重新汇总作答总分与状态
// @Tags 评分
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "答案ID"
// @Param body body service.ManualGradeReq true "得分与评语"
// @Success 200 {object} util.Response
// @Router /api/teacher/answers/{id}/grade [post]
func (c *GradeController) GradeAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	answerID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req service.ManualGradeReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.GradeService.ManualGrade(ctx.Request.Context(), answerID, user.UserID, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary 重新自动评分
// @Description 对作答中仍未评分的答案重新运行自动评分（例如对象存储恢复后）
// @Tags 评分
// @Produce json
// @Security BearerAuth
// @Param id path int true "作答ID"
// @Success 200 {object} util.Response{data=grading.BatchResult}
// @Router /api/teacher/attempts/{id}/regrade [post]
func (c *GradeController) Regrade(ctx *gin.Context) {
	attemptID, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	batch, err := c.GradeService.Regrade(ctx.Request.Context(), attemptID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, batch)
}
