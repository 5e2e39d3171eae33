package service

import (
	"encoding/json"
	"fmt"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/repository"
	"music_exam_backend/internal/util"
	"strings"

	"gorm.io/datatypes"
)

type ExamService struct {
	Repo *repository.ExamRepository
}

func NewExamService(repo *repository.ExamRepository) *ExamService {
	return &ExamService{Repo: repo}
}

type ExamReq struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	TimeLimit   int    `json:"timeLimit"`
	IsPublished bool   `json:"isPublished"`
}

type QuestionReq struct {
	Variant   model.QuestionVariant `json:"variant" binding:"required"`
	Prompt    string                `json:"prompt" binding:"required"`
	AudioFile model.FileRef         `json:"audioFile"`
	MaxPoints int                   `json:"maxPoints" binding:"min=0"`
	SortOrder int                   `json:"sortOrder"`
	Detail    json.RawMessage       `json:"detail"`
}

func (s *ExamService) CreateExam(creatorID uint, req ExamReq) (*model.Exam, error) {
	exam := &model.Exam{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		TimeLimit:   req.TimeLimit,
		CreatorID:   creatorID,
		IsPublished: req.IsPublished,
	}
	if err := s.Repo.Create(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

func (s *ExamService) SetPublished(examID, userID uint, role model.UserRole, published bool) (*model.Exam, error) {
	exam, err := s.Repo.FindByID(examID)
	if err != nil {
		return nil, err
	}
	if role != model.Admin && exam.CreatorID != userID {
		return nil, util.ErrPermissionDenied
	}
	exam.IsPublished = published
	if err := s.Repo.Update(exam); err != nil {
		return nil, err
	}
	return exam, nil
}

// AddQuestion 题目详情必须能按题型解码，保证评分时不会遇到形状不符的数据
func (s *ExamService) AddQuestion(examID, userID uint, role model.UserRole, req QuestionReq) (*model.Question, error) {
	exam, err := s.Repo.FindByID(examID)
	if err != nil {
		return nil, err
	}
	if role != model.Admin && exam.CreatorID != userID {
		return nil, util.ErrPermissionDenied
	}
	if !req.Variant.Valid() {
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidVariant, req.Variant)
	}
	if _, err := grading.DecodeDetail(req.Variant, req.Detail); err != nil {
		return nil, err
	}

	q := &model.Question{
		ExamID:    examID,
		Variant:   req.Variant,
		Prompt:    req.Prompt,
		AudioFile: req.AudioFile,
		MaxPoints: req.MaxPoints,
		SortOrder: req.SortOrder,
		Detail:    datatypes.JSON(req.Detail),
	}
	if err := s.Repo.CreateQuestion(q); err != nil {
		return nil, err
	}
	return q, nil
}

type StudentQuestion struct {
	ID        uint                  `json:"id"`
	Variant   model.QuestionVariant `json:"variant"`
	Prompt    string                `json:"prompt"`
	AudioFile model.FileRef         `json:"audioFile"`
	MaxPoints int                   `json:"maxPoints"`
	SortOrder int                   `json:"sortOrder"`
	Detail    interface{}           `json:"detail,omitempty"`
}

type StudentExam struct {
	ID          uint              `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	TimeLimit   int               `json:"timeLimit"`
	TotalPoints int               `json:"totalPoints"`
	Questions   []StudentQuestion `json:"questions"`
}

// GetExam 教师/管理员看到完整题目，学生只能看到已发布试卷且不含答案
func (s *ExamService) GetExam(examID uint, role model.UserRole) (interface{}, error) {
	exam, err := s.Repo.FindWithQuestions(examID)
	if err != nil {
		return nil, err
	}
	if role.IsStaff() {
		return exam, nil
	}
	if !exam.IsPublished {
		return nil, util.ErrExamNotPublished
	}

	view := &StudentExam{
		ID:          exam.ID,
		Title:       exam.Title,
		Description: exam.Description,
		TimeLimit:   exam.TimeLimit,
		Questions:   make([]StudentQuestion, 0, len(exam.Questions)),
	}
	for _, q := range exam.Questions {
		view.TotalPoints += q.MaxPoints
		sq := StudentQuestion{
			ID:        q.ID,
			Variant:   q.Variant,
			Prompt:    q.Prompt,
			AudioFile: q.AudioFile,
			MaxPoints: q.MaxPoints,
			SortOrder: q.SortOrder,
		}
		if d, err := grading.DecodeDetail(q.Variant, q.Detail); err == nil {
			sq.Detail = grading.PublicDetail(d)
		}
		view.Questions = append(view.Questions, sq)
	}
	return view, nil
}
