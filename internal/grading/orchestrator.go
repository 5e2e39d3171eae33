package grading

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"music_exam_backend/internal/config"
	"music_exam_backend/internal/model"
	"music_exam_backend/internal/notation"
	"music_exam_backend/internal/util"
	"music_exam_backend/pkg/logger"
	"music_exam_backend/pkg/monitoring"
	"music_exam_backend/pkg/tracing"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxRecomputeRetries 汇总写回遇到版本冲突时的重试次数
const maxRecomputeRetries = 5

// Settings 可热更新的评分参数
type Settings struct {
	Tolerance    float64
	Workers      int
	FetchTimeout time.Duration
}

func SettingsFromConfig(cfg config.GradingConfig) Settings {
	return Settings{
		Tolerance:    cfg.Tolerance,
		Workers:      cfg.Workers,
		FetchTimeout: cfg.FetchTimeout(),
	}
}

func (s Settings) normalized() Settings {
	if s.Tolerance <= 0 {
		s.Tolerance = notation.DefaultTolerance
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	return s
}

type Orchestrator struct {
	store   Store
	fetcher ContentFetcher
	now     func() time.Time

	mu       sync.RWMutex
	settings Settings
}

func NewOrchestrator(store Store, fetcher ContentFetcher, settings Settings) *Orchestrator {
	return &Orchestrator{
		store:    store,
		fetcher:  fetcher,
		now:      time.Now,
		settings: settings.normalized(),
	}
}

// UpdateSettings 配置热更新时调用，只影响之后开始的批次
func (o *Orchestrator) UpdateSettings(s Settings) {
	o.mu.Lock()
	o.settings = s.normalized()
	o.mu.Unlock()
	logger.Log.Info("Grading settings updated",
		zap.Float64("tolerance", s.Tolerance),
		zap.Int("workers", s.Workers),
		zap.Duration("fetchTimeout", s.FetchTimeout))
}

func (o *Orchestrator) Settings() Settings {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.settings
}

// GradeAttempt 对一次已提交作答中所有未评分答案执行自动评分，全部完成后统一汇总。
// 单道答案的跳过或失败不会中断批次。
func (o *Orchestrator) GradeAttempt(ctx context.Context, attemptID uint) (*BatchResult, error) {
	ctx, span := tracing.Tracer.Start(ctx, "grading.GradeAttempt")
	defer span.End()
	span.SetAttributes(attribute.Int64("attempt.id", int64(attemptID)))

	start := time.Now()
	defer func() {
		monitoring.GradingBatchDuration.Observe(time.Since(start).Seconds())
	}()

	attempt, err := o.store.GetAttempt(ctx, attemptID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptNotSubmitted
	}

	items, err := o.store.LoadUngradedAnswers(ctx, attemptID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "load answers")
		return nil, fmt.Errorf("load ungraded answers: %w", err)
	}

	settings := o.Settings()
	result := &BatchResult{
		BatchID:   uuid.New().String(),
		AttemptID: attemptID,
		Outcomes:  make([]Outcome, len(items)),
	}

	var g errgroup.Group
	g.SetLimit(settings.Workers)
	for i := range items {
		g.Go(func() error {
			result.Outcomes[i] = o.gradeOne(ctx, attemptID, items[i], settings)
			return nil
		})
	}
	// 所有答案处理完毕后才能汇总
	_ = g.Wait()
	result.tally()

	updated, err := o.recompute(ctx, attemptID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "recompute")
		return result, fmt.Errorf("recompute attempt %d: %w", attemptID, err)
	}
	result.Attempt = updated

	span.SetAttributes(
		attribute.Int("answers.graded", result.Graded),
		attribute.Int("answers.skipped", result.Skipped),
		attribute.Int("answers.failed", result.Failed),
	)
	logger.Log.Info("Attempt graded",
		zap.String("batchId", result.BatchID),
		zap.Uint("attemptId", attemptID),
		zap.Int("graded", result.Graded),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.String("status", string(updated.Status)),
		zap.Int("score", updated.Score),
		zap.Int("totalPoints", updated.TotalPoints))
	return result, nil
}

func (o *Orchestrator) gradeOne(ctx context.Context, attemptID uint, item Item, s Settings) Outcome {
	out := o.evaluate(ctx, item, s)
	out.AnswerID = item.Answer.ID
	out.QuestionID = item.Question.ID
	out.Variant = item.Question.Variant
	out.MaxPoints = item.Answer.MaxPoints

	if out.Kind == OutcomeGraded {
		saved, err := o.store.SaveAutoGrade(ctx, AutoGrade{
			AnswerID:     item.Answer.ID,
			PointsEarned: out.PointsEarned,
			Evaluation:   out.Evaluation,
			GradedAt:     o.now(),
		})
		switch {
		case err != nil:
			out = withIdentity(failed(fmt.Errorf("save grade: %w", err)), out)
		case !saved:
			out = withIdentity(skipped(ReasonAlreadyGraded), out)
		}
	}

	monitoring.GradedAnswers.WithLabelValues(string(out.Variant), string(out.Kind)).Inc()
	if out.Evaluation != nil && out.Kind == OutcomeGraded {
		monitoring.EvaluationPercentage.Observe(float64(out.Evaluation.Percentage))
	}

	fields := []zap.Field{
		zap.Uint("attemptId", attemptID),
		zap.Uint("answerId", out.AnswerID),
		zap.String("variant", string(out.Variant)),
		zap.String("reason", out.Reason),
	}
	switch out.Kind {
	case OutcomeSkipped:
		logger.Log.Info("Answer skipped", fields...)
	case OutcomeFailed:
		logger.Log.Warn("Answer grading failed", fields...)
	default:
		logger.Log.Debug("Answer graded", append(fields, zap.Int("points", out.PointsEarned))...)
	}
	return out
}

func (o *Orchestrator) evaluate(ctx context.Context, item Item, s Settings) Outcome {
	variant := item.Question.Variant
	grade, ok := rules[variant]
	if !ok {
		return skipped(ReasonUnsupportedVariant)
	}

	detail, err := DecodeDetail(variant, item.Question.Detail)
	if err != nil {
		return failed(err)
	}
	response, err := DecodeResponse(variant, item.Answer.Payload)
	if err != nil {
		return failed(err)
	}

	return grade(o, ctx, ruleInput{
		Detail:     detail,
		Response:   response,
		Submission: &item.Answer.SubmissionFile,
		MaxPoints:  item.Answer.MaxPoints,
		settings:   s,
	})
}

func withIdentity(out, from Outcome) Outcome {
	out.AnswerID = from.AnswerID
	out.QuestionID = from.QuestionID
	out.Variant = from.Variant
	out.MaxPoints = from.MaxPoints
	return out
}

// ApplyManualGrade 人工评分后立即重新汇总
func (o *Orchestrator) ApplyManualGrade(ctx context.Context, grade ManualGrade) (*model.Attempt, error) {
	ctx, span := tracing.Tracer.Start(ctx, "grading.ApplyManualGrade")
	defer span.End()
	span.SetAttributes(attribute.Int64("answer.id", int64(grade.AnswerID)))

	answer, err := o.store.GetAnswer(ctx, grade.AnswerID)
	if err != nil {
		return nil, err
	}
	if grade.PointsEarned < 0 || grade.PointsEarned > answer.MaxPoints {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", util.ErrPointsOutOfRange, grade.PointsEarned, answer.MaxPoints)
	}

	attempt, err := o.store.GetAttempt(ctx, answer.AttemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == model.AttemptInProgress {
		return nil, util.ErrAttemptNotSubmitted
	}

	if err := o.store.SaveManualGrade(ctx, grade, o.now()); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("save manual grade: %w", err)
	}

	logger.Log.Info("Manual grade applied",
		zap.Uint("attemptId", answer.AttemptID),
		zap.Uint("answerId", grade.AnswerID),
		zap.Int("points", grade.PointsEarned),
		zap.String("gradedBy", grade.GradedBy))

	return o.recompute(ctx, answer.AttemptID)
}

// recompute 乐观锁冲突时重读重算
func (o *Orchestrator) recompute(ctx context.Context, attemptID uint) (*model.Attempt, error) {
	var lastErr error
	for i := 0; i < maxRecomputeRetries; i++ {
		attempt, err := o.store.RecomputeAttempt(ctx, attemptID)
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, util.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		logger.Log.Debug("Attempt version conflict, retrying", zap.Uint("attemptId", attemptID), zap.Int("try", i+1))
	}
	return nil, lastErr
}
