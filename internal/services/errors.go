package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. Augmentation failures never appear here:
// they are absorbed into a degraded outcome.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrExtractionFailed  = errors.New("extraction failed")
	ErrUnknownRole       = errors.New("unknown role")
	ErrInternal          = errors.New("internal error")
)

type Stage string

const (
	StageReceived       Stage = "received"
	StageExtracted      Stage = "extracted"
	StageBaselineScored Stage = "baseline_scored"
	StageAugmented      Stage = "augmented"
	StageCompleted      Stage = "completed"
)

// ScoringError is the terminal Failed(stage, cause) state of an evaluation.
// Stage is the last stage that was reached before the failure.
type ScoringError struct {
	Stage Stage
	Kind  error
	Err   error
}

func (e *ScoringError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s at stage %s", e.Kind, e.Stage)
	}
	return fmt.Sprintf("%s at stage %s: %v", e.Kind, e.Stage, e.Err)
}

func (e *ScoringError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// ErrorKind returns the classified kind of err, ErrInternal for anything the
// engine did not classify itself.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrUnsupportedFormat, ErrExtractionFailed, ErrUnknownRole} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}

// KindCode returns a stable machine-readable code for an error kind.
func KindCode(err error) string {
	switch ErrorKind(err) {
	case ErrUnsupportedFormat:
		return "UNSUPPORTED_FORMAT"
	case ErrExtractionFailed:
		return "EXTRACTION_FAILED"
	case ErrUnknownRole:
		return "UNKNOWN_ROLE"
	default:
		return "INTERNAL_ERROR"
	}
}
