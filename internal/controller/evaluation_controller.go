package controller

import (
	"fmt"
	"io"
	"music_exam_backend/internal/service"
	"music_exam_backend/internal/util"
	"strconv"

	"github.com/gin-gonic/gin"
)

type EvaluationController struct {
	Service *service.EvaluationService
}

func NewEvaluationController(svc *service.EvaluationService) *EvaluationController {
	return &EvaluationController{Service: svc}
}

// @Summary 比对两份乐谱
// @Description 上传参考乐谱与学生乐谱（MusicXML 或 .mxl），返回逐音符诊断与百分比得分
// @Tags 乐谱评测
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param reference formData file true "参考乐谱"
// @Param student formData file true "学生乐谱"
// @Param offset formData int false "参考谱移调半音数" default(0)
// @Param tolerance formData number false "对齐容差（拍）"
// @Success 200 {object} util.Response{data=notation.EvaluationResult}
// @Failure 400 {object} util.Response
// @Router /api/evaluate [post]
func (c *EvaluationController) Evaluate(ctx *gin.Context) {
	reference, err := readFormFile(ctx, "reference")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	student, err := readFormFile(ctx, "student")
	if err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	offset, err := strconv.Atoi(ctx.DefaultPostForm("offset", "0"))
	if err != nil {
		util.BadRequest(ctx, "invalid offset")
		return
	}
	tolerance := util.ParseFloatDefault(ctx.PostForm("tolerance"), 0)

	res := c.Service.Evaluate(service.EvaluateReq{
		Reference:      reference,
		Student:        student,
		SemitoneOffset: offset,
		Tolerance:      tolerance,
	})
	util.Success(ctx, res)
}

func readFormFile(ctx *gin.Context, field string) ([]byte, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required", field)
	}
	if fh.Size > util.MaxNotationBytes {
		return nil, fmt.Errorf("%s file too large", field)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, util.MaxNotationBytes))
}
