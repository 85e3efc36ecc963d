package extraction

import "fmt"

// ErrorCode represents specific extraction failure types.
type ErrorCode string

const (
	ErrInvalidDocument ErrorCode = "INVALID_DOCUMENT"
	ErrPDFUnreadable   ErrorCode = "PDF_UNREADABLE"
	ErrOCRFailed       ErrorCode = "OCR_FAILED"
	ErrAIUnavailable   ErrorCode = "AI_UNAVAILABLE"
	ErrAIRateLimited   ErrorCode = "AI_RATE_LIMITED"
	ErrAIBadResponse   ErrorCode = "AI_BAD_RESPONSE"
)

// Error is a structured error for pipeline failures. Only text-acquisition
// codes (PDF_UNREADABLE, OCR_FAILED, INVALID_DOCUMENT) abort an invocation;
// AI codes are swallowed by the pipeline and degrade to heuristics.
type Error struct {
	Code      ErrorCode
	Message   string
	Stage     string // "acquire", "ai"
	Retryable bool
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable returns whether this error is retryable.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// IsFatal reports whether err should abort the whole pipeline invocation.
// Anything outside the text-acquisition stage is best-effort.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(*Error); ok {
		switch e.Code {
		case ErrInvalidDocument, ErrPDFUnreadable, ErrOCRFailed:
			return true
		}
		return false
	}
	return true
}
