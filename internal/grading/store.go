package grading

import (
	"context"
	"time"

	"music_exam_backend/internal/model"
	"music_exam_backend/internal/notation"
)

// Item 一道待评分的答案及其题目
type Item struct {
	Answer   model.Answer
	Question model.Question
}

type AutoGrade struct {
	AnswerID     uint
	PointsEarned int
	Evaluation   *notation.EvaluationResult
	GradedAt     time.Time
}

type ManualGrade struct {
	AnswerID     uint    `json:"-"`
	PointsEarned int     `json:"pointsEarned"`
	Feedback     *string `json:"feedback,omitempty"`
	GradedBy     string  `json:"-"`
}

// Store 评分所需的持久化操作
type Store interface {
	GetAttempt(ctx context.Context, attemptID uint) (*model.Attempt, error)
	GetAnswer(ctx context.Context, answerID uint) (*model.Answer, error)
	// LoadUngradedAnswers 返回该次作答中所有未评分的答案，附带题目定义
	LoadUngradedAnswers(ctx context.Context, attemptID uint) ([]Item, error)
	// SaveAutoGrade 仅在答案仍未评分时写入；返回 false 表示已被人工评分抢先
	SaveAutoGrade(ctx context.Context, grade AutoGrade) (bool, error)
	SaveManualGrade(ctx context.Context, grade ManualGrade, gradedAt time.Time) error
	// RecomputeAttempt 汇总全部答案并写回总分与状态；版本冲突时返回 util.ErrVersionConflict
	RecomputeAttempt(ctx context.Context, attemptID uint) (*model.Attempt, error)
}

// ContentFetcher 从对象存储读取乐谱文件
type ContentFetcher interface {
	Fetch(ctx context.Context, ref model.FileRef) ([]byte, error)
}

// Totals 作答汇总结果
type Totals struct {
	Score       int
	TotalPoints int
	Status      model.AttemptStatus
}

// Summarize 对全部答案求和；所有答案都已评分才是 GRADED，否则 SUBMITTED
func Summarize(answers []model.Answer) Totals {
	t := Totals{Status: model.AttemptGraded}
	for _, a := range answers {
		t.Score += a.PointsEarned
		t.TotalPoints += a.MaxPoints
		if !a.IsGraded {
			t.Status = model.AttemptSubmitted
		}
	}
	return t
}
