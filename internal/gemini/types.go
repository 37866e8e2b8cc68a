package gemini

import (
	"errors"
	"fmt"
	"net/http"
)

// Request and response shapes for the generateContent endpoint.
// Only the fields the client reads are mapped.

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content content `json:"content"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GenerationError describes a failure to generate content for one recipient.
// After the bounded retry budget is exhausted the recipient is marked Failed;
// the campaign continues with the next recipient.
type GenerationError struct {
	Op         string // "generate" or "ping"
	StatusCode int    // HTTP status, 0 for transport failures
	Err        error
}

func (e *GenerationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gemini %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gemini %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a generation failure is transient. Quota
// exhaustion and server errors are retried with backoff; invalid requests and
// auth failures are permanent.
func IsRetryable(err error) bool {
	var ge *GenerationError
	if !errors.As(err, &ge) {
		return false
	}
	if ge.StatusCode == 0 {
		// Transport-level failure, worth another attempt.
		return true
	}
	return ge.StatusCode == http.StatusTooManyRequests || ge.StatusCode >= http.StatusInternalServerError
}
