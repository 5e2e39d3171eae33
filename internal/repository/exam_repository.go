package repository

import (
	"errors"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

func (r *ExamRepository) Create(exam *model.Exam) error {
	return r.DB.Create(exam).Error
}

func (r *ExamRepository) Update(exam *model.Exam) error {
	return r.DB.Save(exam).Error
}

func (r *ExamRepository) FindByID(id uint) (*model.Exam, error) {
	var exam model.Exam
	if err := r.DB.First(&exam, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

// FindWithQuestions 按题目顺序预加载
func (r *ExamRepository) FindWithQuestions(id uint) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, id ASC")
	}).First(&exam, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrExamNotFound
		}
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) CreateQuestion(q *model.Question) error {
	return r.DB.Create(q).Error
}

func (r *ExamRepository) FindQuestion(examID, questionID uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.Where("exam_id = ?", examID).First(&q, questionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

func (r *ExamRepository) ListQuestions(examID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("exam_id = ?", examID).Order("sort_order ASC, id ASC").Find(&questions).Error
	return questions, err
}
