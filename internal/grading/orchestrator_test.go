package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// melody 生成单声部乐谱，每个音一拍，如 melody("C4", "E4")
func melody(pitches ...string) string {
	var b strings.Builder
	b.WriteString(`<score-partwise><part id="P1"><measure number="1"><attributes><divisions>1</divisions></attributes>`)
	for _, p := range pitches {
		fmt.Fprintf(&b, `<note><pitch><step>%s</step><octave>%s</octave></pitch><duration>1</duration><type>quarter</type></note>`, p[:1], p[1:])
	}
	b.WriteString(`</measure></part></score-partwise>`)
	return b.String()
}

func mustJSON(t *testing.T, v interface{}) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func newTestOrchestrator(store Store, fetcher ContentFetcher) *Orchestrator {
	o := NewOrchestrator(store, fetcher, Settings{Tolerance: 0.25, Workers: 3, FetchTimeout: time.Second})
	o.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return o
}

func TestGradeAttemptMixedVariantsReachesGraded(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	tf := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":true}`)
	lw := store.addQuestion(model.VariantListenAndWrite, 20, mustJSON(t, ListenAndWriteDetail{
		Reference: ScoreSource{MusicXML: melody("C4", "E4", "G4")},
	}))
	tfAnswer := store.addAnswer(attemptID, tf, `{"selected":true}`, nil)
	lwAnswer := store.addAnswer(attemptID, lw, `{}`, &model.FileRef{Bucket: "submissions", Path: "7/1.musicxml"})

	fetcher := &mapFetcher{files: map[string][]byte{
		"submissions/7/1.musicxml": []byte(melody("C4", "E4", "G4")),
	}}

	res, err := newTestOrchestrator(store, fetcher).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)

	assert.NotEmpty(t, res.BatchID)
	assert.Equal(t, 2, res.Graded)
	assert.Equal(t, model.AttemptGraded, res.Attempt.Status)
	assert.Equal(t, 30, res.Attempt.Score)
	assert.Equal(t, 30, res.Attempt.TotalPoints)

	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, tfAnswer, res.Outcomes[0].AnswerID)
	assert.True(t, res.Outcomes[0].IsCorrect)
	assert.Equal(t, lwAnswer, res.Outcomes[1].AnswerID)
	require.NotNil(t, res.Outcomes[1].Evaluation)
	assert.Equal(t, 100, res.Outcomes[1].Evaluation.Percentage)

	saved := store.answer(lwAnswer)
	assert.True(t, saved.IsGraded)
	assert.Equal(t, model.GradingAuto, saved.GradingMode)
	assert.Equal(t, model.AutoGrader, *saved.GradedBy)
	assert.NotEmpty(t, saved.Evaluation)
	assert.Equal(t, 1, fetcher.calls)
}

func TestListenAndWriteWithoutReferenceStaysSubmitted(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	tf := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":false}`)
	lw := store.addQuestion(model.VariantListenAndWrite, 20, `{}`)
	store.addAnswer(attemptID, tf, `{"selected":false}`, nil)
	lwAnswer := store.addAnswer(attemptID, lw, mustJSON(t, map[string]string{"musicXml": melody("C4")}), nil)

	orch := newTestOrchestrator(store, &mapFetcher{})
	res, err := orch.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Graded)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, OutcomeSkipped, res.Outcomes[1].Kind)
	assert.Equal(t, ReasonNoReference, res.Outcomes[1].Reason)
	assert.False(t, store.answer(lwAnswer).IsGraded)
	assert.Equal(t, model.AttemptSubmitted, res.Attempt.Status)
	assert.Equal(t, 10, res.Attempt.Score)
	assert.Equal(t, 30, res.Attempt.TotalPoints)

	// 再次触发仍然停留在 SUBMITTED
	res, err = orch.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Len(t, res.Outcomes, 1)
	assert.Equal(t, model.AttemptSubmitted, res.Attempt.Status)
}

func TestNotationWithoutSubmissionIsSkipped(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	lw := store.addQuestion(model.VariantListenAndWrite, 5, mustJSON(t, ListenAndWriteDetail{
		Reference: ScoreSource{File: &model.FileRef{Bucket: "scores", Path: "ref.xml"}},
	}))
	store.addAnswer(attemptID, lw, ``, nil)

	fetcher := &mapFetcher{files: map[string][]byte{"scores/ref.xml": []byte(melody("C4"))}}
	res, err := newTestOrchestrator(store, fetcher).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, ReasonNoSubmission, res.Outcomes[0].Reason)
	assert.Zero(t, fetcher.calls)
}

func TestFetchFailureSkipsOnlyThatAnswer(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	lw := store.addQuestion(model.VariantListenAndWrite, 20, mustJSON(t, ListenAndWriteDetail{
		Reference: ScoreSource{File: &model.FileRef{Bucket: "scores", Path: "missing.xml"}},
	}))
	mc := store.addQuestion(model.VariantMultipleChoice, 5, `{"options":["A","B"],"correctOption":"B"}`)
	store.addAnswer(attemptID, lw, mustJSON(t, map[string]string{"musicXml": melody("C4")}), nil)
	store.addAnswer(attemptID, mc, `{"selected":" b "}`, nil)

	res, err := newTestOrchestrator(store, &mapFetcher{}).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)

	assert.Equal(t, OutcomeSkipped, res.Outcomes[0].Kind)
	assert.True(t, strings.HasPrefix(res.Outcomes[0].Reason, ReasonReferenceFetch))
	assert.Equal(t, OutcomeGraded, res.Outcomes[1].Kind)
	assert.Equal(t, 5, res.Outcomes[1].PointsEarned)
	assert.Equal(t, 5, res.Attempt.Score)
	assert.Equal(t, model.AttemptSubmitted, res.Attempt.Status)
}

type stallingFetcher struct{}

func (stallingFetcher) Fetch(ctx context.Context, _ model.FileRef) ([]byte, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestFetchTimeoutIsSkip(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	lw := store.addQuestion(model.VariantListenAndWrite, 20, mustJSON(t, ListenAndWriteDetail{
		Reference: ScoreSource{MusicXML: melody("C4")},
	}))
	store.addAnswer(attemptID, lw, `{}`, &model.FileRef{Bucket: "submissions", Path: "slow.xml"})

	orch := NewOrchestrator(store, stallingFetcher{}, Settings{Workers: 1, FetchTimeout: 20 * time.Millisecond})
	res, err := orch.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcomes[0].Kind)
	assert.Contains(t, res.Outcomes[0].Reason, context.DeadlineExceeded.Error())
}

func TestNotationPartialCreditAndThreshold(t *testing.T) {
	ten := []string{"C4", "D4", "E4", "F4", "G4", "A4", "B4", "C5", "D5", "E5"}
	cases := []struct {
		name      string
		reference []string
		student   []string
		points    int
		correct   bool
	}{
		{"three of four", []string{"C4", "D4", "E4", "F4"}, []string{"C4", "D4", "E4"}, 8, false},
		{"ninety percent", ten, ten[:9], 9, true},
		{"eighty percent", ten, ten[:8], 8, false},
		{"nothing right", []string{"C4"}, []string{"D4"}, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newMemoryStore()
			attemptID := store.addAttempt(model.AttemptSubmitted)
			q := store.addQuestion(model.VariantListenAndWrite, 10, mustJSON(t, ListenAndWriteDetail{
				Reference: ScoreSource{MusicXML: melody(tc.reference...)},
			}))
			store.addAnswer(attemptID, q, mustJSON(t, map[string]string{"musicXml": melody(tc.student...)}), nil)

			res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
			require.NoError(t, err)
			assert.Equal(t, tc.points, res.Outcomes[0].PointsEarned)
			assert.Equal(t, tc.correct, res.Outcomes[0].IsCorrect)
			assert.Equal(t, model.AttemptGraded, res.Attempt.Status)
		})
	}
}

func TestListenAndCompleteUsesCompleteScore(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	q := store.addQuestion(model.VariantListenAndComplete, 12, mustJSON(t, ListenAndCompleteDetail{
		Incomplete: ScoreSource{MusicXML: melody("C4")},
		Complete:   ScoreSource{MusicXML: melody("C4", "D4")},
	}))
	store.addAnswer(attemptID, q, mustJSON(t, map[string]string{"musicXml": melody("C4", "D4")}), nil)

	res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Outcomes[0].PointsEarned)
	assert.Equal(t, 2, res.Outcomes[0].Evaluation.TotalNotes)
}

func TestExactMatchVariants(t *testing.T) {
	cases := []struct {
		variant model.QuestionVariant
		detail  string
		payload string
		correct bool
	}{
		{model.VariantTrueFalse, `{"correct":true}`, `{"selected":false}`, false},
		{model.VariantTrueFalse, `{"correct":true}`, `{}`, false},
		{model.VariantMultipleChoice, `{"correctOption":"B"}`, `{"selected":" b "}`, true},
		{model.VariantIntervalDictation, `{"correctOption":"Perfect Fifth"}`, `{"selected":"perfect fifth"}`, true},
		{model.VariantChordDictation, `{"correctOption":"Major"}`, `{"selected":"minor"}`, false},
		{model.VariantProgressionDictation, `{"chords":["I","V","vi","IV"]}`, `{"chords":["i","V","vi","IV"]}`, true},
		{model.VariantProgressionDictation, `{"chords":["I","V","vi","IV"]}`, `{"chords":["I","V","vi"]}`, false},
		{model.VariantProgressionDictation, `{"chords":["I","V"]}`, `{"chords":["V","I"]}`, false},
	}

	for i, tc := range cases {
		t.Run(fmt.Sprintf("%d_%s", i, tc.variant), func(t *testing.T) {
			store := newMemoryStore()
			attemptID := store.addAttempt(model.AttemptSubmitted)
			q := store.addQuestion(tc.variant, 4, tc.detail)
			store.addAnswer(attemptID, q, tc.payload, nil)

			res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
			require.NoError(t, err)
			out := res.Outcomes[0]
			assert.Equal(t, OutcomeGraded, out.Kind)
			assert.Equal(t, tc.correct, out.IsCorrect)
			if tc.correct {
				assert.Equal(t, 4, out.PointsEarned)
			} else {
				assert.Zero(t, out.PointsEarned)
			}
		})
	}
}

func TestMissingCorrectValueIsSkipped(t *testing.T) {
	for _, v := range []model.QuestionVariant{
		model.VariantTrueFalse, model.VariantMultipleChoice, model.VariantChordDictation, model.VariantProgressionDictation,
	} {
		store := newMemoryStore()
		attemptID := store.addAttempt(model.AttemptSubmitted)
		q := store.addQuestion(v, 4, `{}`)
		store.addAnswer(attemptID, q, `{}`, nil)

		res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
		require.NoError(t, err)
		assert.Equal(t, ReasonNoCorrectValue, res.Outcomes[0].Reason, string(v))
	}
}

func TestManualVariantsWaitForHumanGrade(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	tr := store.addQuestion(model.VariantTransposition, 10, `{"semitoneOffset":2}`)
	or := store.addQuestion(model.VariantOrchestration, 10, `{"instruments":["violin","cello"]}`)
	fr := store.addQuestion(model.VariantListeningFreeResponse, 10, `{"rubric":"mention the cadence"}`)
	trAnswer := store.addAnswer(attemptID, tr, `{"musicXml":"<score-partwise/>"}`, nil)
	orAnswer := store.addAnswer(attemptID, or, `{}`, nil)
	frAnswer := store.addAnswer(attemptID, fr, `{"text":"a plagal cadence"}`, nil)

	orch := newTestOrchestrator(store, nil)
	res, err := orch.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Skipped)
	for _, o := range res.Outcomes {
		assert.Equal(t, ReasonManualRequired, o.Reason)
	}
	assert.Equal(t, model.AttemptSubmitted, res.Attempt.Status)

	feedback := "good voicing"
	for i, id := range []uint{trAnswer, orAnswer, frAnswer} {
		attempt, err := orch.ApplyManualGrade(context.Background(), ManualGrade{
			AnswerID: id, PointsEarned: 7, Feedback: &feedback, GradedBy: "teacher-3",
		})
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, model.AttemptSubmitted, attempt.Status)
		} else {
			assert.Equal(t, model.AttemptGraded, attempt.Status)
			assert.Equal(t, 21, attempt.Score)
			assert.Equal(t, 30, attempt.TotalPoints)
		}
	}

	saved := store.answer(frAnswer)
	assert.Equal(t, model.GradingManual, saved.GradingMode)
	assert.Equal(t, "teacher-3", *saved.GradedBy)
	assert.Equal(t, feedback, *saved.Feedback)
}

func TestApplyManualGradeValidation(t *testing.T) {
	store := newMemoryStore()
	submitted := store.addAttempt(model.AttemptSubmitted)
	open := store.addAttempt(model.AttemptInProgress)
	q := store.addQuestion(model.VariantOrchestration, 10, `{}`)
	a := store.addAnswer(submitted, q, `{}`, nil)
	b := store.addAnswer(open, q, `{}`, nil)
	orch := newTestOrchestrator(store, nil)

	_, err := orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: a, PointsEarned: 11})
	assert.ErrorIs(t, err, util.ErrPointsOutOfRange)
	_, err = orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: a, PointsEarned: -1})
	assert.ErrorIs(t, err, util.ErrPointsOutOfRange)
	_, err = orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: b, PointsEarned: 5})
	assert.ErrorIs(t, err, util.ErrAttemptNotSubmitted)
	_, err = orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: 999, PointsEarned: 5})
	assert.ErrorIs(t, err, util.ErrAnswerNotFound)

	// 人工评分可以覆盖自动评分结果
	attempt, err := orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: a, PointsEarned: 10, GradedBy: "t"})
	require.NoError(t, err)
	assert.Equal(t, 10, attempt.Score)
	attempt, err = orch.ApplyManualGrade(context.Background(), ManualGrade{AnswerID: a, PointsEarned: 4, GradedBy: "t"})
	require.NoError(t, err)
	assert.Equal(t, 4, attempt.Score)
}

func TestAutoGradeNeverOverwritesHumanGrade(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	q := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":true}`)
	answerID := store.addAnswer(attemptID, q, `{"selected":true}`, nil)

	store.afterLoad = func(s *memoryStore) {
		require.NoError(t, s.SaveManualGrade(context.Background(), ManualGrade{AnswerID: answerID, PointsEarned: 3, GradedBy: "t"}, time.Now()))
	}

	res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkipped, res.Outcomes[0].Kind)
	assert.Equal(t, ReasonAlreadyGraded, res.Outcomes[0].Reason)
	assert.Equal(t, 3, store.answer(answerID).PointsEarned)
	assert.Equal(t, 3, res.Attempt.Score)
	assert.Equal(t, model.AttemptGraded, res.Attempt.Status)
}

func TestFailedAnswerDoesNotAbortBatch(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	tf := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":true}`)
	mc := store.addQuestion(model.VariantMultipleChoice, 5, `{"correctOption":"A"}`)
	odd := store.addQuestion(model.QuestionVariant("SIGHT_SINGING"), 5, `{}`)
	store.addAnswer(attemptID, tf, `{"selected":"yes"}`, nil)
	store.addAnswer(attemptID, mc, `{"selected":"a"}`, nil)
	store.addAnswer(attemptID, odd, `{}`, nil)

	res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcomes[0].Kind)
	assert.Equal(t, OutcomeGraded, res.Outcomes[1].Kind)
	assert.Equal(t, ReasonUnsupportedVariant, res.Outcomes[2].Reason)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 5, res.Attempt.Score)
}

func TestSaveErrorIsFailure(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	q := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":true}`)
	store.addAnswer(attemptID, q, `{"selected":true}`, nil)
	store.saveErr = errors.New("connection reset")

	res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, OutcomeFailed, res.Outcomes[0].Kind)
	assert.Contains(t, res.Outcomes[0].Reason, "connection reset")
	assert.Equal(t, model.AttemptSubmitted, res.Attempt.Status)
}

func TestRecomputeRetriesVersionConflicts(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	q := store.addQuestion(model.VariantTrueFalse, 10, `{"correct":true}`)
	store.addAnswer(attemptID, q, `{"selected":true}`, nil)
	store.conflicts = 2

	res, err := newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, 3, store.recomputes)
	assert.Equal(t, model.AttemptGraded, res.Attempt.Status)

	store.conflicts = maxRecomputeRetries
	_, err = newTestOrchestrator(store, nil).GradeAttempt(context.Background(), attemptID)
	assert.ErrorIs(t, err, util.ErrVersionConflict)
}

func TestGradeAttemptPreconditions(t *testing.T) {
	store := newMemoryStore()
	open := store.addAttempt(model.AttemptInProgress)
	orch := newTestOrchestrator(store, nil)

	_, err := orch.GradeAttempt(context.Background(), open)
	assert.ErrorIs(t, err, util.ErrAttemptNotSubmitted)

	_, err = orch.GradeAttempt(context.Background(), 404)
	assert.ErrorIs(t, err, util.ErrAttemptNotFound)
}

func TestGradeAttemptManyAnswersWithBoundedWorkers(t *testing.T) {
	store := newMemoryStore()
	attemptID := store.addAttempt(model.AttemptSubmitted)
	for i := 0; i < 40; i++ {
		q := store.addQuestion(model.VariantMultipleChoice, 1, `{"correctOption":"C"}`)
		sel := "C"
		if i%4 == 0 {
			sel = "D"
		}
		store.addAnswer(attemptID, q, fmt.Sprintf(`{"selected":%q}`, sel), nil)
	}

	orch := newTestOrchestrator(store, nil)
	orch.UpdateSettings(Settings{Workers: 3, Tolerance: 0.25})
	res, err := orch.GradeAttempt(context.Background(), attemptID)
	require.NoError(t, err)
	assert.Equal(t, 40, res.Graded)
	assert.Equal(t, 30, res.Attempt.Score)
	assert.Equal(t, 40, res.Attempt.TotalPoints)
	for i := 1; i < len(res.Outcomes); i++ {
		assert.Less(t, res.Outcomes[i-1].AnswerID, res.Outcomes[i].AnswerID)
	}
}

func TestUpdateSettingsNormalizes(t *testing.T) {
	orch := NewOrchestrator(newMemoryStore(), nil, Settings{})
	s := orch.Settings()
	assert.Equal(t, 0.25, s.Tolerance)
	assert.Equal(t, 1, s.Workers)

	orch.UpdateSettings(Settings{Tolerance: 0.5, Workers: 8})
	assert.Equal(t, 0.5, orch.Settings().Tolerance)
	assert.Equal(t, 8, orch.Settings().Workers)
}
