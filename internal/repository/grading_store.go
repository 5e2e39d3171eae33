package repository

import (
	"context"
	"encoding/json"
	"errors"
	"music_exam_backend/internal/grading"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GradingStore 评分流程的 gorm 实现
type GradingStore struct {
	DB *gorm.DB
}

func NewGradingStore(db *gorm.DB) *GradingStore {
	return &GradingStore{DB: db}
}

var _ grading.Store = (*GradingStore)(nil)

func (s *GradingStore) GetAttempt(ctx context.Context, attemptID uint) (*model.Attempt, error) {
	var a model.Attempt
	if err := s.DB.WithContext(ctx).First(&a, attemptID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAttemptNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *GradingStore) GetAnswer(ctx context.Context, answerID uint) (*model.Answer, error) {
	var a model.Answer
	if err := s.DB.WithContext(ctx).First(&a, answerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrAnswerNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (s *GradingStore) LoadUngradedAnswers(ctx context.Context, attemptID uint) ([]grading.Item, error) {
	db := s.DB.WithContext(ctx)

	var answers []model.Answer
	if err := db.Where("attempt_id = ? AND is_graded = ?", attemptID, false).Order("id ASC").Find(&answers).Error; err != nil {
		return nil, err
	}
	if len(answers) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	var questions []model.Question
	if err := db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	items := make([]grading.Item, 0, len(answers))
	for _, a := range answers {
		// 题目被删除时 Variant 为空，评分时按不支持的题型跳过
		items = append(items, grading.Item{Answer: a, Question: byID[a.QuestionID]})
	}
	return items, nil
}

func (s *GradingStore) SaveAutoGrade(ctx context.Context, g grading.AutoGrade) (bool, error) {
	updates := map[string]interface{}{
		"points_earned": g.PointsEarned,
		"is_graded":     true,
		"grading_mode":  model.GradingAuto,
		"graded_at":     g.GradedAt,
		"graded_by":     model.AutoGrader,
	}
	if g.Evaluation != nil {
		raw, err := json.Marshal(g.Evaluation)
		if err != nil {
			return false, err
		}
		updates["evaluation"] = datatypes.JSON(raw)
	}

	res := s.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ? AND is_graded = ?", g.AnswerID, false).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GradingStore) SaveManualGrade(ctx context.Context, g grading.ManualGrade, gradedAt time.Time) error {
	res := s.DB.WithContext(ctx).Model(&model.Answer{}).
		Where("id = ?", g.AnswerID).
		Updates(map[string]interface{}{
			"points_earned": g.PointsEarned,
			"is_graded":     true,
			"grading_mode":  model.GradingManual,
			"feedback":      g.Feedback,
			"graded_at":     gradedAt,
			"graded_by":     g.GradedBy,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrAnswerNotFound
	}
	return nil
}

// RecomputeAttempt 读版本 -> 汇总全部答案 -> 按版本条件写回，版本被他人推进则返回 ErrVersionConflict
func (s *GradingStore) RecomputeAttempt(ctx context.Context, attemptID uint) (*model.Attempt, error) {
	var out model.Attempt
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var attempt model.Attempt
		if err := tx.First(&attempt, attemptID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrAttemptNotFound
			}
			return err
		}

		var answers []model.Answer
		if err := tx.Select("id", "max_points", "points_earned", "is_graded").
			Where("attempt_id = ?", attemptID).Find(&answers).Error; err != nil {
			return err
		}
		totals := grading.Summarize(answers)

		if err := writeTotals(tx, &attempt, totals); err != nil {
			return err
		}

		out = attempt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// writeTotals 以读取时的版本为条件写回，成功后推进内存中的版本
func writeTotals(tx *gorm.DB, attempt *model.Attempt, totals grading.Totals) error {
	res := tx.Model(&model.Attempt{}).
		Where("id = ? AND version = ?", attempt.ID, attempt.Version).
		Updates(map[string]interface{}{
			"score":        totals.Score,
			"total_points": totals.TotalPoints,
			"status":       totals.Status,
			"version":      attempt.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrVersionConflict
	}

	attempt.Score = totals.Score
	attempt.TotalPoints = totals.TotalPoints
	attempt.Status = totals.Status
	attempt.Version++
	return nil
}
