package util

import "errors"

var (
	ErrPermissionDenied    = errors.New("permission denied")
	ErrExamNotFound        = errors.New("exam not found")
	ErrExamNotPublished    = errors.New("exam not published or not accessible")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrAnswerNotFound      = errors.New("answer not found")
	ErrAttemptNotFound     = errors.New("attempt not found")
	ErrAttemptNotSubmitted = errors.New("attempt not submitted")
	ErrAttemptSubmitted    = errors.New("attempt already submitted")
	ErrInvalidVariant      = errors.New("unknown question variant")
	ErrInvalidPayload      = errors.New("payload does not match question variant")
	ErrPointsOutOfRange    = errors.New("points out of range")
	ErrVersionConflict     = errors.New("attempt was modified concurrently")
	ErrContentUnavailable  = errors.New("content unavailable")
)
