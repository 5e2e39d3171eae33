package repository

import (
	"errors"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

func (r *AttemptRepository) Create(attempt *model.Attempt) error {
	return r.DB.Create(attempt).Error
}

func (r *AttemptRepository) FindByID(id uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := r.DB.First(&a, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindWithAnswers(id uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Preload("Answers", func(db *gorm.DB) *gorm.DB {
		return db.Order("id ASC")
	}).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindOpen 学生在该考试下未提交的作答
func (r *AttemptRepository) FindOpen(examID, studentID uint) (*model.Attempt, error) {
	var a model.Attempt
	err := r.DB.Where("exam_id = ? AND student_id = ? AND status = ?", examID, studentID, model.AttemptInProgress).
		Order("id DESC").First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *AttemptRepository) FindAnswer(attemptID, questionID uint) (*model.Answer, error) {
	var ans model.Answer
	err := r.DB.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&ans).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}
	return &ans, nil
}

// SaveAnswer 新建或覆盖作答，覆盖时评分状态被重置
func (r *AttemptRepository) SaveAnswer(answer *model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var existing model.Answer
		err := tx.Where("attempt_id = ? AND question_id = ?", answer.AttemptID, answer.QuestionID).First(&existing).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if existing.ID == 0 {
			return tx.Create(answer).Error
		}

		existing.Payload = answer.Payload
		existing.SubmissionFile = answer.SubmissionFile
		existing.MaxPoints = answer.MaxPoints
		existing.ResetGrade()
		if err := tx.Save(&existing).Error; err != nil {
			return err
		}
		*answer = existing
		return nil
	})
}

// EnsureAnswers 为未作答的题目补空答案，使汇总覆盖整张试卷
func (r *AttemptRepository) EnsureAnswers(attemptID uint, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var answered []uint
		if err := tx.Model(&model.Answer{}).Where("attempt_id = ?", attemptID).Pluck("question_id", &answered).Error; err != nil {
			return err
		}
		seen := make(map[uint]bool, len(answered))
		for _, id := range answered {
			seen[id] = true
		}

		var missing []model.Answer
		for _, q := range questions {
			if !seen[q.ID] {
				missing = append(missing, model.Answer{AttemptID: attemptID, QuestionID: q.ID, MaxPoints: q.MaxPoints})
			}
		}
		if len(missing) == 0 {
			return nil
		}
		return tx.Create(&missing).Error
	})
}

// MarkSubmitted 仅对进行中的作答生效，返回 ErrAttemptSubmitted 表示已被提交过
func (r *AttemptRepository) MarkSubmitted(attemptID uint, submittedAt time.Time, timeSpent int) error {
	res := r.DB.Model(&model.Attempt{}).
		Where("id = ? AND status = ?", attemptID, model.AttemptInProgress).
		Updates(map[string]interface{}{
			"status":             model.AttemptSubmitted,
			"submitted_at":       submittedAt,
			"time_spent_seconds": timeSpent,
			"version":            gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAttemptSubmitted
	}
	return nil
}

// ListByStatus 按状态列出某场考试的作答，examID 为 0 时不限考试
func (r *AttemptRepository) ListByStatus(examID uint, status model.AttemptStatus, page, limit int) ([]model.Attempt, int64, error) {
	q := r.DB.Model(&model.Attempt{}).Where("status = ?", status)
	if examID != 0 {
		q = q.Where("exam_id = ?", examID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var attempts []model.Attempt
	if page < 1 {
		page = 1
	}
	if limit > 0 {
		q = q.Offset((page - 1) * limit).Limit(limit)
	}
	err := q.Order("submitted_at ASC, id ASC").Find(&attempts).Error
	return attempts, total, err
}

func (r *AttemptRepository) CountUngraded(attemptID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Answer{}).Where("attempt_id = ? AND is_graded = ?", attemptID, false).Count(&count).Error
	return count, err
}
