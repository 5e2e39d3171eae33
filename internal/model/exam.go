package model

// swagger:model Exam
type Exam struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	TimeLimit   int    `gorm:"default:0" json:"timeLimit"` // Minutes
	CreatorID   uint   `gorm:"index" json:"creatorId"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`

	Questions []Question `gorm:"foreignKey:ExamID" json:"questions,omitempty"`
}

func (Exam) TableName() string {
	return "exams"
}
