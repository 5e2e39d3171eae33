package notation

import "strconv"

// Step 音名（不含变音记号）
type Step string

const (
	StepC Step = "C"
	StepD Step = "D"
	StepE Step = "E"
	StepF Step = "F"
	StepG Step = "G"
	StepA Step = "A"
	StepB Step = "B"
)

// NoteType 时值类型
type NoteType string

const (
	Whole   NoteType = "whole"
	Half    NoteType = "half"
	Quarter NoteType = "quarter"
	Eighth  NoteType = "eighth"
	N16th   NoteType = "16th"
	N32nd   NoteType = "32nd"
	N64th   NoteType = "64th"
)

var noteTypes = map[string]NoteType{
	"whole":   Whole,
	"half":    Half,
	"quarter": Quarter,
	"eighth":  Eighth,
	"16th":    N16th,
	"32nd":    N32nd,
	"64th":    N64th,
}

// ParseNoteType maps a <type> value to the closed enum; anything unknown is a quarter.
func ParseNoteType(s string) NoteType {
	if t, ok := noteTypes[s]; ok {
		return t
	}
	return Quarter
}

type Articulation string

const (
	Staccato      Articulation = "staccato"
	Accent        Articulation = "accent"
	Tenuto        Articulation = "tenuto"
	Staccatissimo Articulation = "staccatissimo"
	Marcato       Articulation = "marcato"
)

var articulations = map[string]Articulation{
	"staccato":      Staccato,
	"accent":        Accent,
	"tenuto":        Tenuto,
	"staccatissimo": Staccatissimo,
	"strong-accent": Marcato,
	"marcato":       Marcato,
}

// NoteEvent 一个有音高的音符。Duration 以 divisions 为单位，Position 以拍为单位。
type NoteEvent struct {
	Step         Step         `json:"step"`
	Octave       int          `json:"octave"`
	Alter        int          `json:"alter"`
	Duration     float64      `json:"duration"`
	Type         NoteType     `json:"type"`
	Position     float64      `json:"position"`
	TieStart     bool         `json:"tieStart"`
	TieEnd       bool         `json:"tieEnd"`
	SlurStart    bool         `json:"slurStart"`
	SlurEnd      bool         `json:"slurEnd"`
	Articulation Articulation `json:"articulation,omitempty"`
}

// Name renders the pitch as e.g. "C#4" or "Bb3".
func (n NoteEvent) Name() string {
	acc := ""
	switch {
	case n.Alter > 0:
		acc = "#"
	case n.Alter < 0:
		acc = "b"
	}
	return string(n.Step) + acc + strconv.Itoa(n.Octave)
}

type ErrorKind string

const (
	ErrorPitch        ErrorKind = "pitch"
	ErrorDuration     ErrorKind = "duration"
	ErrorTie          ErrorKind = "tie"
	ErrorSlur         ErrorKind = "slur"
	ErrorArticulation ErrorKind = "articulation"
	ErrorMissing      ErrorKind = "missing"
	ErrorExtra        ErrorKind = "extra"
)

// Comparison 对齐后的一组音符比较结果
type Comparison struct {
	Position     float64    `json:"position"`
	Expected     *NoteEvent `json:"expected,omitempty"`
	Actual       *NoteEvent `json:"actual,omitempty"`
	IsCorrect    bool       `json:"isCorrect"`
	ErrorKind    ErrorKind  `json:"errorKind,omitempty"`
	ExpectedMIDI *int       `json:"expectedMidi,omitempty"`
	ActualMIDI   *int       `json:"actualMidi,omitempty"`
	// Notices lists tie/slur/articulation differences. Display only.
	Notices []ErrorKind `json:"notices,omitempty"`
}

// EvaluationResult 评测结果
type EvaluationResult struct {
	Score          int          `json:"score"`
	TotalNotes     int          `json:"totalNotes"`
	CorrectNotes   int          `json:"correctNotes"`
	IncorrectNotes int          `json:"incorrectNotes"`
	MissingNotes   int          `json:"missingNotes"`
	ExtraNotes     int          `json:"extraNotes"`
	Details        []Comparison `json:"details"`
	Percentage     int          `json:"percentage"`
}
