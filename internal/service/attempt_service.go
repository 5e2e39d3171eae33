package service

import (
	"context"
	"encoding/json"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/repository"
	"music_exam_backend/internal/util"
	"music_exam_backend/pkg/logger"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Grader 评分入口，由 grading.Orchestrator 实现
type Grader interface {
	GradeAttempt(ctx context.Context, attemptID uint) (*grading.BatchResult, error)
	ApplyManualGrade(ctx context.Context, grade grading.ManualGrade) (*model.Attempt, error)
}

type AttemptService struct {
	Repo     *repository.AttemptRepository
	ExamRepo *repository.ExamRepository
	Grader   Grader
	now      func() time.Time
}

func NewAttemptService(repo *repository.AttemptRepository, examRepo *repository.ExamRepository, grader Grader) *AttemptService {
	return &AttemptService{Repo: repo, ExamRepo: examRepo, Grader: grader, now: time.Now}
}

// StartAttempt 已有进行中的作答时直接返回
func (s *AttemptService) StartAttempt(examID, studentID uint) (*model.Attempt, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err != nil {
		return nil, err
	}
	if !exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}

	open, err := s.Repo.FindOpen(examID, studentID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		return open, nil
	}

	attempt := &model.Attempt{
		ExamID:    examID,
		StudentID: studentID,
		Status:    model.AttemptInProgress,
		StartedAt: s.now(),
	}
	if err := s.Repo.Create(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// GetAttempt 学生只能查看自己的作答
func (s *AttemptService) GetAttempt(attemptID, userID uint, role model.UserRole) (*model.Attempt, error) {
	attempt, err := s.Repo.FindWithAnswers(attemptID)
	if err != nil {
		return nil, err
	}
	if role == model.Student && attempt.StudentID != userID {
		return nil, util.ErrPermissionDenied
	}
	return attempt, nil
}

type SaveAnswerReq struct {
	Payload        json.RawMessage `json:"payload"`
	SubmissionFile model.FileRef   `json:"submissionFile"`
}

type SaveAnswerResult struct {
	Answer *model.Answer         `json:"answer"`
	Batch  *grading.BatchResult `json:"batch,omitempty"`
}

// SaveAnswer 保存作答。已提交的作答再次保存视为重新提交：答案重置为未评分并立即重新评分。
func (s *AttemptService) SaveAnswer(ctx context.Context, attemptID, questionID, studentID uint, req SaveAnswerReq) (*SaveAnswerResult, error) {
	attempt, err := s.Repo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	question, err := s.ExamRepo.FindQuestion(attempt.ExamID, questionID)
	if err != nil {
		return nil, err
	}
	if _, err := grading.DecodeResponse(question.Variant, req.Payload); err != nil {
		return nil, err
	}

	answer := &model.Answer{
		AttemptID:      attemptID,
		QuestionID:     questionID,
		Payload:        datatypes.JSON(req.Payload),
		SubmissionFile: req.SubmissionFile,
		MaxPoints:      question.MaxPoints,
	}
	if err := s.Repo.SaveAnswer(answer); err != nil {
		return nil, err
	}

	result := &SaveAnswerResult{Answer: answer}
	if attempt.Status == model.AttemptInProgress {
		return result, nil
	}

	logger.Log.Info("Answer re-submitted, regrading attempt",
		zap.Uint("attemptId", attemptID),
		zap.Uint("answerId", answer.ID))
	batch, err := s.Grader.GradeAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	result.Batch = batch
	return result, nil
}

// SubmitAttempt 提交作答并触发自动评分，这是评分批次的唯一入口
func (s *AttemptService) SubmitAttempt(ctx context.Context, attemptID, studentID uint) (*grading.BatchResult, error) {
	attempt, err := s.Repo.FindByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.StudentID != studentID {
		return nil, util.ErrPermissionDenied
	}
	if attempt.Status != model.AttemptInProgress {
		return nil, util.ErrAttemptSubmitted
	}

	questions, err := s.ExamRepo.ListQuestions(attempt.ExamID)
	if err != nil {
		return nil, err
	}
	if err := s.Repo.EnsureAnswers(attemptID, questions); err != nil {
		return nil, err
	}

	now := s.now()
	spent := int(now.Sub(attempt.StartedAt).Seconds())
	if spent < 0 {
		spent = 0
	}
	if err := s.Repo.MarkSubmitted(attemptID, now, spent); err != nil {
		return nil, err
	}

	return s.Grader.GradeAttempt(ctx, attemptID)
}

func (s *AttemptService) ListPendingGrading(examID uint, page, limit int) ([]model.Attempt, int64, error) {
	return s.Repo.ListByStatus(examID, model.AttemptSubmitted, page, limit)
}
