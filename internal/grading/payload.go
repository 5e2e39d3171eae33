package grading

import (
	"encoding/json"
	"fmt"
	"strings"

	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"
)

// ScoreSource 乐谱来源：内联 MusicXML 或对象存储中的文件，二选一
type ScoreSource struct {
	MusicXML string         `json:"musicXml,omitempty"`
	File     *model.FileRef `json:"file,omitempty"`
}

func (s *ScoreSource) IsZero() bool {
	return s == nil || (strings.TrimSpace(s.MusicXML) == "" && s.File.IsZero())
}

// Detail 题目详情，每种题型一个实现
type Detail interface {
	Variant() model.QuestionVariant
}

// Response 学生作答，每种题型一个实现
type Response interface {
	Variant() model.QuestionVariant
}

type TrueFalseDetail struct {
	Correct *bool `json:"correct"`
}

type TrueFalseResponse struct {
	Selected *bool `json:"selected"`
}

// ChoiceDetail 单选、音程听辨、和弦听辨共用
type ChoiceDetail struct {
	variant       model.QuestionVariant
	Options       []string `json:"options,omitempty"`
	CorrectOption string   `json:"correctOption"`
}

type ChoiceResponse struct {
	variant  model.QuestionVariant
	Selected string `json:"selected"`
}

type ProgressionDetail struct {
	Chords []string `json:"chords"`
}

type ProgressionResponse struct {
	Chords []string `json:"chords"`
}

type ListenAndWriteDetail struct {
	Reference ScoreSource `json:"reference"`
}

type ListenAndCompleteDetail struct {
	Incomplete ScoreSource `json:"incomplete"`
	Complete   ScoreSource `json:"complete"`
}

// NotationResponse 听写 / 补全类题型的作答，MusicXML 也可以通过 Answer.SubmissionFile 提交
type NotationResponse struct {
	variant  model.QuestionVariant
	MusicXML string `json:"musicXml,omitempty"`
}

type TranspositionDetail struct {
	Source         ScoreSource `json:"source"`
	SemitoneOffset int         `json:"semitoneOffset"`
}

type OrchestrationDetail struct {
	Source      ScoreSource `json:"source"`
	Instruments []string    `json:"instruments"`
}

type FreeResponseDetail struct {
	Rubric string `json:"rubric"`
}

// FreeResponse 人工批阅题型的作答：文本或乐谱
type FreeResponse struct {
	variant  model.QuestionVariant
	Text     string `json:"text,omitempty"`
	MusicXML string `json:"musicXml,omitempty"`
}

func (TrueFalseDetail) Variant() model.QuestionVariant         { return model.VariantTrueFalse }
func (TrueFalseResponse) Variant() model.QuestionVariant       { return model.VariantTrueFalse }
func (d ChoiceDetail) Variant() model.QuestionVariant          { return d.variant }
func (r ChoiceResponse) Variant() model.QuestionVariant        { return r.variant }
func (ProgressionDetail) Variant() model.QuestionVariant       { return model.VariantProgressionDictation }
func (ProgressionResponse) Variant() model.QuestionVariant     { return model.VariantProgressionDictation }
func (ListenAndWriteDetail) Variant() model.QuestionVariant    { return model.VariantListenAndWrite }
func (ListenAndCompleteDetail) Variant() model.QuestionVariant { return model.VariantListenAndComplete }
func (r NotationResponse) Variant() model.QuestionVariant      { return r.variant }
func (TranspositionDetail) Variant() model.QuestionVariant     { return model.VariantTransposition }
func (OrchestrationDetail) Variant() model.QuestionVariant     { return model.VariantOrchestration }
func (FreeResponseDetail) Variant() model.QuestionVariant      { return model.VariantListeningFreeResponse }
func (r FreeResponse) Variant() model.QuestionVariant          { return r.variant }

// DecodeDetail 按题型解码 Question.Detail，空内容得到零值详情
func DecodeDetail(variant model.QuestionVariant, raw []byte) (Detail, error) {
	var d Detail
	var err error
	switch variant {
	case model.VariantTrueFalse:
		var v TrueFalseDetail
		err = decode(raw, &v)
		d = v
	case model.VariantMultipleChoice, model.VariantIntervalDictation, model.VariantChordDictation:
		v := ChoiceDetail{variant: variant}
		err = decode(raw, &v)
		d = v
	case model.VariantProgressionDictation:
		var v ProgressionDetail
		err = decode(raw, &v)
		d = v
	case model.VariantListenAndWrite:
		var v ListenAndWriteDetail
		err = decode(raw, &v)
		d = v
	case model.VariantListenAndComplete:
		var v ListenAndCompleteDetail
		err = decode(raw, &v)
		d = v
	case model.VariantTransposition:
		var v TranspositionDetail
		err = decode(raw, &v)
		d = v
	case model.VariantOrchestration:
		var v OrchestrationDetail
		err = decode(raw, &v)
		d = v
	case model.VariantListeningFreeResponse:
		var v FreeResponseDetail
		err = decode(raw, &v)
		d = v
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidVariant, variant)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s detail: %v", util.ErrInvalidPayload, variant, err)
	}
	return d, nil
}

// DecodeResponse 按题型解码 Answer.Payload
func DecodeResponse(variant model.QuestionVariant, raw []byte) (Response, error) {
	var r Response
	var err error
	switch variant {
	case model.VariantTrueFalse:
		var v TrueFalseResponse
		err = decode(raw, &v)
		r = v
	case model.VariantMultipleChoice, model.VariantIntervalDictation, model.VariantChordDictation:
		v := ChoiceResponse{variant: variant}
		err = decode(raw, &v)
		r = v
	case model.VariantProgressionDictation:
		var v ProgressionResponse
		err = decode(raw, &v)
		r = v
	case model.VariantListenAndWrite, model.VariantListenAndComplete:
		v := NotationResponse{variant: variant}
		err = decode(raw, &v)
		r = v
	case model.VariantTransposition, model.VariantOrchestration, model.VariantListeningFreeResponse:
		v := FreeResponse{variant: variant}
		err = decode(raw, &v)
		r = v
	default:
		return nil, fmt.Errorf("%w: %q", util.ErrInvalidVariant, variant)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s response: %v", util.ErrInvalidPayload, variant, err)
	}
	return r, nil
}

func decode(raw []byte, v interface{}) error {
	if len(strings.TrimSpace(string(raw))) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// PublicDetail 返回可以展示给学生的题目详情，去掉标准答案与参考谱
func PublicDetail(d Detail) interface{} {
	switch v := d.(type) {
	case ChoiceDetail:
		return map[string]interface{}{"options": v.Options}
	case ProgressionDetail:
		return map[string]interface{}{"length": len(v.Chords)}
	case ListenAndCompleteDetail:
		return map[string]interface{}{"incomplete": v.Incomplete}
	case TranspositionDetail, OrchestrationDetail:
		return v
	default:
		return nil
	}
}
