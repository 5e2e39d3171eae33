package app

import (
	"music_exam_backend/docs"
	"music_exam_backend/internal/config"
	"music_exam_backend/internal/middleware"
	"music_exam_backend/internal/model"
	"music_exam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		// 学生/通用 授权接口
		a.registerStudentRoutes(authGroup, c)

		// 教师相关接口
		a.registerTeacherRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	rg.POST("/evaluate", c.evaluation.Evaluate)
	rg.POST("/uploads/notation", c.upload.UploadNotation)

	rg.GET("/exams/:id", c.exam.GetExam)
	rg.POST("/exams/:id/attempts", middleware.RoleMiddleware(model.Student), c.attempt.StartAttempt)

	rg.GET("/attempts/:id", c.attempt.GetAttempt)
	rg.PUT("/attempts/:id/answers/:questionId", middleware.RoleMiddleware(model.Student), c.attempt.SaveAnswer)
	// 提交是评分批次的唯一入口
	rg.POST("/attempts/:id/submit", middleware.RoleMiddleware(model.Student), c.attempt.SubmitAttempt)
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher, model.Admin))
	{
		teacher.POST("/exams", c.exam.CreateExam)
		teacher.PUT("/exams/:id/publish", c.exam.PublishExam)
		teacher.POST("/exams/:id/questions", c.exam.AddQuestion)
		teacher.GET("/exams/:id/attempts/pending-grading", c.grade.ListPendingGrading)

		teacher.POST("/answers/:id/grade", c.grade.GradeAnswer)
		teacher.POST("/attempts/:id/regrade", c.grade.Regrade)
	}
}
