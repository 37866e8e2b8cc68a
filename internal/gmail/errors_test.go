package gmail

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limited",
			err:  &SendError{Op: "send", Recipient: "a@b.c", Err: &googleapi.Error{Code: http.StatusTooManyRequests}},
			want: true,
		},
		{
			name: "server error",
			err:  &SendError{Op: "send", Recipient: "a@b.c", Err: &googleapi.Error{Code: http.StatusInternalServerError}},
			want: true,
		},
		{
			name: "bad request",
			err:  &SendError{Op: "send", Recipient: "a@b.c", Err: &googleapi.Error{Code: http.StatusBadRequest}},
			want: false,
		},
		{
			name: "forbidden",
			err:  &SendError{Op: "send", Recipient: "a@b.c", Err: &googleapi.Error{Code: http.StatusForbidden}},
			want: false,
		},
		{
			name: "network failure",
			err:  &SendError{Op: "send", Recipient: "a@b.c", Err: fmt.Errorf("connection reset")},
			want: true,
		},
		{
			name: "encode failure is permanent",
			err:  &SendError{Op: "encode", Recipient: "a@b.c", Err: fmt.Errorf("attachment too large")},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSendErrorUnwrap(t *testing.T) {
	inner := &googleapi.Error{Code: http.StatusBadRequest}
	err := &SendError{Op: "send", Recipient: "a@b.c", Err: inner}

	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		t.Error("SendError should unwrap to the googleapi error")
	}
}
