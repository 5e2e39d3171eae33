package controller

import (
	"music_exam_backend/internal/service"
	"music_exam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type UploadController struct {
	Storage *service.StorageService
}

func NewUploadController(storage *service.StorageService) *UploadController {
	return &UploadController{Storage: storage}
}

// @Summary 上传乐谱文件
// @Description 上传 MusicXML / .mxl 文件，返回可用于题目参考谱或学生答案的文件引用
// @Tags 文件
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "乐谱文件"
// @Param bucket formData string false "存储桶，默认使用存储配置中的桶"
// @Success 201 {object} util.Response{data=model.FileRef}
// @Failure 400 {object} util.Response
// @Router /api/uploads/notation [post]
func (c *UploadController) UploadNotation(ctx *gin.Context) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "File is required")
		return
	}
	if fh.Size > util.MaxNotationBytes {
		util.BadRequest(ctx, "File too large")
		return
	}
	if !util.IsNotationFile(fh.Filename) {
		util.BadRequest(ctx, "Only .xml, .musicxml and .mxl files are allowed")
		return
	}

	f, err := fh.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer f.Close()

	ref, err := c.Storage.UploadNotation(ctx.Request.Context(), ctx.PostForm("bucket"), fh.Filename, f, fh.Size, fh.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, ref)
}
