package controller

import (
	"music_exam_backend/internal/service"
	"music_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	Service *service.ExamService
}

func NewExamController(svc *service.ExamService) *ExamController {
	return &ExamController{Service: svc}
}

// @Summary 创建试卷
// @Tags 试卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body service.ExamReq true "试卷信息"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams [post]
func (c *ExamController) CreateExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.ExamReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	exam, err := c.Service.CreateExam(user.UserID, req)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, exam)
}

// @Summary 获取试卷
// @Description 学生只能看到已发布的试卷，且不包含答案
// @Tags 试卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [get]
func (c *ExamController) GetExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	exam, err := c.Service.GetExam(id, user.Role)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}

// @Summary 添加题目
// @Tags 试卷
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param body body service.QuestionReq true "题目"
// @Success 201 {object} util.Response
// @Router /api/teacher/exams/{id}/questions [post]
func (c *ExamController) AddQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}

	var req service.QuestionReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	q, err := c.Service.AddQuestion(id, user.UserID, user.Role, req)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Created(ctx, q)
}

// @Summary 发布/取消发布试卷
// @Tags 试卷
// @Produce json
// @Security BearerAuth
// @Param id path int true "试卷ID"
// @Param published query bool false "是否发布" default(true)
// @Success 200 {object} util.Response
// @Router /api/teacher/exams/{id}/publish [put]
func (c *ExamController) PublishExam(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := paramID(ctx, "id")
	if !ok {
		return
	}
	published := ctx.DefaultQuery("published", "true") != "false"

	exam, err := c.Service.SetPublished(id, user.UserID, user.Role, published)
	if err != nil {
		respondError(ctx, err)
		return
	}
	util.Success(ctx, exam)
}
