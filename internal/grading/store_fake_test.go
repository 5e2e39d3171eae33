package grading

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"music_exam_backend/internal/model"
	"music_exam_backend/internal/util"

	"gorm.io/datatypes"
)

type memoryStore struct {
	mu        sync.Mutex
	attempts  map[uint]*model.Attempt
	questions map[uint]model.Question
	answers   map[uint]*model.Answer
	nextID    uint

	conflicts  int
	recomputes int
	afterLoad  func(s *memoryStore)
	saveErr    error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		attempts:  map[uint]*model.Attempt{},
		questions: map[uint]model.Question{},
		answers:   map[uint]*model.Answer{},
	}
}

func (s *memoryStore) id() uint {
	s.nextID++
	return s.nextID
}

func (s *memoryStore) addAttempt(status model.AttemptStatus) uint {
	a := &model.Attempt{ExamID: 1, StudentID: 7, Status: status}
	a.ID = s.id()
	s.attempts[a.ID] = a
	return a.ID
}

func (s *memoryStore) addQuestion(v model.QuestionVariant, maxPoints int, detail string) uint {
	q := model.Question{ExamID: 1, Variant: v, MaxPoints: maxPoints, Detail: datatypes.JSON(detail)}
	q.ID = s.id()
	s.questions[q.ID] = q
	return q.ID
}

func (s *memoryStore) addAnswer(attemptID, questionID uint, payload string, file *model.FileRef) uint {
	a := &model.Answer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		Payload:    datatypes.JSON(payload),
		MaxPoints:  s.questions[questionID].MaxPoints,
	}
	if file != nil {
		a.SubmissionFile = *file
	}
	a.ID = s.id()
	s.answers[a.ID] = a
	return a.ID
}

func (s *memoryStore) answer(id uint) model.Answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.answers[id]
}

func (s *memoryStore) GetAttempt(_ context.Context, id uint) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, util.ErrAttemptNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) GetAnswer(_ context.Context, id uint) (*model.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[id]
	if !ok {
		return nil, util.ErrAnswerNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *memoryStore) LoadUngradedAnswers(_ context.Context, attemptID uint) ([]Item, error) {
	s.mu.Lock()
	var items []Item
	for _, a := range s.answers {
		if a.AttemptID == attemptID && !a.IsGraded {
			items = append(items, Item{Answer: *a, Question: s.questions[a.QuestionID]})
		}
	}
	s.mu.Unlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Answer.ID < items[j].Answer.ID })

	if s.afterLoad != nil {
		s.afterLoad(s)
	}
	return items, nil
}

func (s *memoryStore) SaveAutoGrade(_ context.Context, g AutoGrade) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return false, s.saveErr
	}
	a := s.answers[g.AnswerID]
	if a.IsGraded {
		return false, nil
	}
	a.PointsEarned = g.PointsEarned
	a.IsGraded = true
	a.GradingMode = model.GradingAuto
	at := g.GradedAt
	a.GradedAt = &at
	by := model.AutoGrader
	a.GradedBy = &by
	if g.Evaluation != nil {
		a.Evaluation = datatypes.JSON(fmt.Sprintf(`{"percentage":%d}`, g.Evaluation.Percentage))
	}
	return true, nil
}

func (s *memoryStore) SaveManualGrade(_ context.Context, g ManualGrade, gradedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.answers[g.AnswerID]
	if !ok {
		return util.ErrAnswerNotFound
	}
	a.PointsEarned = g.PointsEarned
	a.IsGraded = true
	a.GradingMode = model.GradingManual
	a.Feedback = g.Feedback
	a.GradedAt = &gradedAt
	by := g.GradedBy
	a.GradedBy = &by
	return nil
}

func (s *memoryStore) RecomputeAttempt(_ context.Context, attemptID uint) (*model.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recomputes++
	if s.conflicts > 0 {
		s.conflicts--
		return nil, util.ErrVersionConflict
	}
	var answers []model.Answer
	for _, a := range s.answers {
		if a.AttemptID == attemptID {
			answers = append(answers, *a)
		}
	}
	t := Summarize(answers)
	at := s.attempts[attemptID]
	at.Score, at.TotalPoints, at.Status = t.Score, t.TotalPoints, t.Status
	at.Version++
	cp := *at
	return &cp, nil
}

type mapFetcher struct {
	mu    sync.Mutex
	files map[string][]byte
	calls int
}

func (f *mapFetcher) Fetch(ctx context.Context, ref model.FileRef) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := f.files[ref.Bucket+"/"+ref.Path]
	if !ok {
		return nil, fmt.Errorf("%s/%s: 404 not found", ref.Bucket, ref.Path)
	}
	return b, nil
}

var _ Store = (*memoryStore)(nil)
var _ ContentFetcher = (*mapFetcher)(nil)
