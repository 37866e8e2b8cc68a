package gmail

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// SendError describes a failure to dispatch a single message. A send failure
// only affects the recipient it belongs to; the campaign continues.
type SendError struct {
	Op        string // "encode" or "send"
	Recipient string
	Err       error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("gmail %s to %s: %v", e.Op, e.Recipient, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether a send failure is worth retrying. Rate-limit
// responses and server errors are transient; anything else (malformed
// recipient, permission denied) is permanent.
func IsRetryable(err error) bool {
	var se *SendError
	if errors.As(err, &se) && se.Op == "encode" {
		return false
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests || gerr.Code >= http.StatusInternalServerError
	}

	// Network-level failures have no HTTP status; treat them as transient.
	return true
}
