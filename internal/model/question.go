package model

import "gorm.io/datatypes"

// QuestionVariant 题型。决定 Detail 与 Answer.Payload 的解码方式以及评分规则。
type QuestionVariant string

const (
	VariantTrueFalse             QuestionVariant = "TRUE_FALSE"
	VariantMultipleChoice        QuestionVariant = "MULTIPLE_CHOICE"
	VariantIntervalDictation     QuestionVariant = "INTERVAL_DICTATION"
	VariantChordDictation        QuestionVariant = "CHORD_DICTATION"
	VariantProgressionDictation  QuestionVariant = "PROGRESSION_DICTATION"
	VariantListenAndWrite        QuestionVariant = "LISTEN_AND_WRITE"
	VariantListenAndComplete     QuestionVariant = "LISTEN_AND_COMPLETE"
	VariantTransposition         QuestionVariant = "TRANSPOSITION"
	VariantOrchestration         QuestionVariant = "ORCHESTRATION"
	VariantListeningFreeResponse QuestionVariant = "LISTENING_FREE_RESPONSE"
)

// Variants lists every known variant in display order.
var Variants = []QuestionVariant{
	VariantTrueFalse,
	VariantMultipleChoice,
	VariantIntervalDictation,
	VariantChordDictation,
	VariantProgressionDictation,
	VariantListenAndWrite,
	VariantListenAndComplete,
	VariantTransposition,
	VariantOrchestration,
	VariantListeningFreeResponse,
}

func (v QuestionVariant) Valid() bool {
	for _, known := range Variants {
		if v == known {
			return true
		}
	}
	return false
}

// swagger:model Question
type Question struct {
	BaseModel
	ExamID    uint            `gorm:"index" json:"examId"`
	Variant   QuestionVariant `gorm:"size:50;not null" json:"variant"`
	Prompt    string          `gorm:"type:text" json:"prompt"`
	AudioFile FileRef         `gorm:"embedded;embeddedPrefix:audio_" json:"audioFile"`
	MaxPoints int             `gorm:"default:0" json:"maxPoints"`
	SortOrder int             `gorm:"default:0" json:"sortOrder"`
	Detail    datatypes.JSON  `json:"detail"` // 题型相关的标准答案 / 参考乐谱
}

func (Question) TableName() string {
	return "questions"
}

// FileRef 指向对象存储中的一个文件
type FileRef struct {
	Bucket string `gorm:"size:100" json:"bucket"`
	Path   string `gorm:"size:500" json:"path"`
}

func (f *FileRef) IsZero() bool {
	return f == nil || f.Path == ""
}
