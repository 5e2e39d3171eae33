package grading

import (
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/notation"
)

type OutcomeKind string

const (
	OutcomeGraded  OutcomeKind = "graded"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeFailed  OutcomeKind = "failed"
)

// 跳过原因
const (
	ReasonManualRequired     = "manual grading required"
	ReasonNoCorrectValue     = "correct value not configured"
	ReasonNoReference        = "reference score not configured"
	ReasonNoSubmission       = "no notation submitted"
	ReasonReferenceFetch     = "reference score unavailable"
	ReasonSubmissionFetch    = "submitted notation unavailable"
	ReasonAlreadyGraded      = "answer already graded"
	ReasonUnsupportedVariant = "unsupported question variant"
)

// Outcome 单道答案的评分结果
type Outcome struct {
	AnswerID     uint                       `json:"answerId"`
	QuestionID   uint                       `json:"questionId"`
	Variant      model.QuestionVariant      `json:"variant"`
	Kind         OutcomeKind                `json:"kind"`
	Reason       string                     `json:"reason,omitempty"`
	PointsEarned int                        `json:"pointsEarned"`
	MaxPoints    int                        `json:"maxPoints"`
	IsCorrect    bool                       `json:"isCorrect"`
	Evaluation   *notation.EvaluationResult `json:"evaluation,omitempty"`
}

func graded(points int, correct bool) Outcome {
	return Outcome{Kind: OutcomeGraded, PointsEarned: points, IsCorrect: correct}
}

func skipped(reason string) Outcome {
	return Outcome{Kind: OutcomeSkipped, Reason: reason}
}

func failed(err error) Outcome {
	return Outcome{Kind: OutcomeFailed, Reason: err.Error()}
}

// BatchResult 一次 GradeAttempt 的汇总
type BatchResult struct {
	BatchID   string         `json:"batchId"`
	AttemptID uint           `json:"attemptId"`
	Attempt   *model.Attempt `json:"attempt"`
	Outcomes  []Outcome      `json:"outcomes"`
	Graded    int            `json:"graded"`
	Skipped   int            `json:"skipped"`
	Failed    int            `json:"failed"`
}

func (b *BatchResult) tally() {
	b.Graded, b.Skipped, b.Failed = 0, 0, 0
	for _, o := range b.Outcomes {
		switch o.Kind {
		case OutcomeGraded:
			b.Graded++
		case OutcomeSkipped:
			b.Skipped++
		case OutcomeFailed:
			b.Failed++
		}
	}
}
