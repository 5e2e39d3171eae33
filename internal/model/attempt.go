package model

import "time"

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptSubmitted  AttemptStatus = "SUBMITTED"
	AttemptGraded     AttemptStatus = "GRADED"
)

// swagger:model Attempt
type Attempt struct {
	BaseModel
	ExamID           uint          `gorm:"index" json:"examId"`
	StudentID        uint          `gorm:"index" json:"studentId"`
	Status           AttemptStatus `gorm:"size:20;default:'IN_PROGRESS';index" json:"status"`
	Score            int           `gorm:"default:0" json:"score"`
	TotalPoints      int           `gorm:"default:0" json:"totalPoints"`
	StartedAt        time.Time     `json:"startedAt"`
	SubmittedAt      *time.Time    `json:"submittedAt,omitempty"`
	TimeSpentSeconds int           `gorm:"default:0" json:"timeSpentSeconds"`
	Version          int           `gorm:"default:0;not null" json:"version"` // 乐观锁

	Answers []Answer `gorm:"foreignKey:AttemptID" json:"answers,omitempty"`
}

func (Attempt) TableName() string {
	return "attempts"
}
