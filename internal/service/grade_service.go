package service

import (
	"context"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"strconv"
)

// GradeService 教师侧评分操作
type GradeService struct {
	Grader Grader
}

func NewGradeService(grader Grader) *GradeService {
	return &GradeService{Grader: grader}
}

type ManualGradeReq struct {
	PointsEarned int     `json:"pointsEarned" binding:"min=0"`
	Feedback     *string `json:"feedback"`
}

// ManualGrade 人工评分会覆盖自动评分结果，并重新汇总作答总分
func (s *GradeService) ManualGrade(ctx context.Context, answerID, graderID uint, req ManualGradeReq) (*model.Attempt, error) {
	return s.Grader.ApplyManualGrade(ctx, grading.ManualGrade{
		AnswerID:     answerID,
		PointsEarned: req.PointsEarned,
		Feedback:     req.Feedback,
		GradedBy:     strconv.FormatUint(uint64(graderID), 10),
	})
}

// Regrade 重新对仍未评分的答案运行自动评分
func (s *GradeService) Regrade(ctx context.Context, attemptID uint) (*grading.BatchResult, error) {
	return s.Grader.GradeAttempt(ctx, attemptID)
}
