package grading

import (
	"context"
	"fmt"
	"strings"

	"music_exam_backend/internal/model"
	"music_exam_backend/internal/notation"
	"music_exam_backend/internal/util"
)

// PassPercentage 乐谱类题目达到该百分比视为答对
const PassPercentage = 90

type ruleInput struct {
	Detail     Detail
	Response   Response
	Submission *model.FileRef
	MaxPoints  int
	settings   Settings
}

type rule func(o *Orchestrator, ctx context.Context, in ruleInput) Outcome

var rules = map[model.QuestionVariant]rule{
	model.VariantTrueFalse:             (*Orchestrator).gradeTrueFalse,
	model.VariantMultipleChoice:        (*Orchestrator).gradeChoice,
	model.VariantIntervalDictation:     (*Orchestrator).gradeChoice,
	model.VariantChordDictation:        (*Orchestrator).gradeChoice,
	model.VariantProgressionDictation:  (*Orchestrator).gradeProgression,
	model.VariantListenAndWrite:        (*Orchestrator).gradeNotation,
	model.VariantListenAndComplete:     (*Orchestrator).gradeNotation,
	model.VariantTransposition:         (*Orchestrator).gradeManual,
	model.VariantOrchestration:         (*Orchestrator).gradeManual,
	model.VariantListeningFreeResponse: (*Orchestrator).gradeManual,
}

// AutoGradable 该题型是否会被自动评分
func AutoGradable(v model.QuestionVariant) bool {
	switch v {
	case model.VariantTransposition, model.VariantOrchestration, model.VariantListeningFreeResponse:
		return false
	}
	_, ok := rules[v]
	return ok
}

// MatchValue 去除首尾空白后忽略大小写比较
func MatchValue(expected, actual string) bool {
	return strings.EqualFold(strings.TrimSpace(expected), strings.TrimSpace(actual))
}

// MatchProgression 逐项按顺序比较，长度不同直接判错
func MatchProgression(expected, actual []string) bool {
	if len(expected) != len(actual) {
		return false
	}
	for i := range expected {
		if !MatchValue(expected[i], actual[i]) {
			return false
		}
	}
	return true
}

func allOrNothing(correct bool, maxPoints int) Outcome {
	if correct {
		return graded(maxPoints, true)
	}
	return graded(0, false)
}

func (o *Orchestrator) gradeTrueFalse(_ context.Context, in ruleInput) Outcome {
	d, ok := in.Detail.(TrueFalseDetail)
	r, ok2 := in.Response.(TrueFalseResponse)
	if !ok || !ok2 {
		return failed(mismatch(in))
	}
	if d.Correct == nil {
		return skipped(ReasonNoCorrectValue)
	}
	return allOrNothing(r.Selected != nil && *r.Selected == *d.Correct, in.MaxPoints)
}

func (o *Orchestrator) gradeChoice(_ context.Context, in ruleInput) Outcome {
	d, ok := in.Detail.(ChoiceDetail)
	r, ok2 := in.Response.(ChoiceResponse)
	if !ok || !ok2 {
		return failed(mismatch(in))
	}
	if strings.TrimSpace(d.CorrectOption) == "" {
		return skipped(ReasonNoCorrectValue)
	}
	return allOrNothing(MatchValue(d.CorrectOption, r.Selected), in.MaxPoints)
}

func (o *Orchestrator) gradeProgression(_ context.Context, in ruleInput) Outcome {
	d, ok := in.Detail.(ProgressionDetail)
	r, ok2 := in.Response.(ProgressionResponse)
	if !ok || !ok2 {
		return failed(mismatch(in))
	}
	if len(d.Chords) == 0 {
		return skipped(ReasonNoCorrectValue)
	}
	return allOrNothing(MatchProgression(d.Chords, r.Chords), in.MaxPoints)
}

func (o *Orchestrator) gradeNotation(ctx context.Context, in ruleInput) Outcome {
	var reference ScoreSource
	switch d := in.Detail.(type) {
	case ListenAndWriteDetail:
		reference = d.Reference
	case ListenAndCompleteDetail:
		reference = d.Complete
	default:
		return failed(mismatch(in))
	}
	r, ok := in.Response.(NotationResponse)
	if !ok {
		return failed(mismatch(in))
	}

	submission := ScoreSource{MusicXML: r.MusicXML, File: in.Submission}
	if reference.IsZero() {
		return skipped(ReasonNoReference)
	}
	if submission.IsZero() {
		return skipped(ReasonNoSubmission)
	}

	refDoc, err := o.load(ctx, reference, in.settings)
	if err != nil {
		return skipped(fmt.Sprintf("%s: %v", ReasonReferenceFetch, err))
	}
	studentDoc, err := o.load(ctx, submission, in.settings)
	if err != nil {
		return skipped(fmt.Sprintf("%s: %v", ReasonSubmissionFetch, err))
	}

	res := notation.Evaluate(refDoc, studentDoc, 0, notation.WithTolerance(in.settings.Tolerance))
	out := graded(notation.PointsFor(res.Percentage, in.MaxPoints), res.Percentage >= PassPercentage)
	out.Evaluation = &res
	return out
}

func (o *Orchestrator) gradeManual(context.Context, ruleInput) Outcome {
	return skipped(ReasonManualRequired)
}

// load 内联内容优先，否则从对象存储读取
func (o *Orchestrator) load(ctx context.Context, src ScoreSource, s Settings) ([]byte, error) {
	if strings.TrimSpace(src.MusicXML) != "" {
		return []byte(src.MusicXML), nil
	}
	if o.fetcher == nil {
		return nil, util.ErrContentUnavailable
	}
	if s.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.FetchTimeout)
		defer cancel()
	}
	return o.fetcher.Fetch(ctx, *src.File)
}

func mismatch(in ruleInput) error {
	return fmt.Errorf("payload mismatch: detail %T, response %T", in.Detail, in.Response)
}
