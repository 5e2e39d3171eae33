package service

import (
	"music_exam_backend/internal/notation"
	"music_exam_backend/pkg/logger"
	"music_exam_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// EvaluationService 独立的乐谱比对，不落库
type EvaluationService struct {
	Tolerance func() float64
}

func NewEvaluationService(tolerance func() float64) *EvaluationService {
	return &EvaluationService{Tolerance: tolerance}
}

type EvaluateReq struct {
	Reference      []byte
	Student        []byte
	SemitoneOffset int
	// Tolerance 为 0 时使用当前配置值
	Tolerance float64
}

func (s *EvaluationService) Evaluate(req EvaluateReq) notation.EvaluationResult {
	tolerance := req.Tolerance
	if tolerance <= 0 && s.Tolerance != nil {
		tolerance = s.Tolerance()
	}

	res := notation.Evaluate(req.Reference, req.Student, req.SemitoneOffset, notation.WithTolerance(tolerance))
	monitoring.EvaluationPercentage.Observe(float64(res.Percentage))

	logger.Log.Debug("Notation evaluated",
		zap.Int("offset", req.SemitoneOffset),
		zap.Float64("tolerance", tolerance),
		zap.Int("totalNotes", res.TotalNotes),
		zap.Int("percentage", res.Percentage))
	return res
}
