package model

import (
	"time"

	"gorm.io/datatypes"
)

type GradingMode string

const (
	GradingAuto   GradingMode = "auto"
	GradingManual GradingMode = "manual"
)

// AutoGrader is written to GradedBy for automatic grades.
const AutoGrader = "system"

// swagger:model Answer
type Answer struct {
	BaseModel
	AttemptID      uint           `gorm:"index;uniqueIndex:idx_attempt_question" json:"attemptId"`
	QuestionID     uint           `gorm:"index;uniqueIndex:idx_attempt_question" json:"questionId"`
	Payload        datatypes.JSON `json:"payload"`
	SubmissionFile FileRef        `gorm:"embedded;embeddedPrefix:submission_" json:"submissionFile"`
	MaxPoints      int            `gorm:"default:0" json:"maxPoints"`
	PointsEarned   int            `gorm:"default:0" json:"pointsEarned"`
	IsGraded       bool           `gorm:"default:false;index" json:"isGraded"`
	GradingMode    GradingMode    `gorm:"size:20" json:"gradingMode,omitempty"`
	Feedback       *string        `gorm:"type:text" json:"feedback,omitempty"`
	GradedAt       *time.Time     `json:"gradedAt,omitempty"`
	GradedBy       *string        `gorm:"size:64" json:"gradedBy,omitempty"`
	Evaluation     datatypes.JSON `json:"evaluation,omitempty"` // 乐谱比对明细
}

func (Answer) TableName() string {
	return "answers"
}

// ResetGrade returns the answer to the ungraded state after a re-submission.
func (a *Answer) ResetGrade() {
	a.PointsEarned = 0
	a.IsGraded = false
	a.GradingMode = ""
	a.Feedback = nil
	a.GradedAt = nil
	a.GradedBy = nil
	a.Evaluation = nil
}
