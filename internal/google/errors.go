package google

import (
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// ErrNoToken indicates that no cached OAuth token exists for an account.
var ErrNoToken = errors.New("no cached OAuth token")

// AuthError describes a failure in the OAuth2 flow. Authentication failures
// are never retried automatically; a running campaign halts and the user must
// re-authorize.
type AuthError struct {
	Op      string // "configure", "exchange", "token", "refresh", "save"
	Account string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Account != "" {
		return fmt.Sprintf("google auth %s (account %s): %v", e.Op, e.Account, e.Err)
	}
	return fmt.Sprintf("google auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is an authentication failure. Beyond
// AuthError from the consent flow, this catches the two shapes a credential
// revoked or expired mid-run actually takes: a refresh rejection from the
// oauth2 transport, and an API response rejecting the bearer token. Access
// tokens live about an hour, so long campaigns hit these paths, not the
// construction-time checks.
func IsAuthError(err error) bool {
	var ae *AuthError
	if errors.As(err, &ae) {
		return true
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return true
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		if gerr.Code == http.StatusUnauthorized {
			return true
		}
		if gerr.Code == http.StatusForbidden {
			for _, item := range gerr.Errors {
				if item.Reason == "authError" || item.Reason == "accountDisabled" {
					return true
				}
			}
		}
	}

	return false
}
