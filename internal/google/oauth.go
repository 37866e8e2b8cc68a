package google

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	// EnvClientID is the environment variable holding the OAuth client ID.
	EnvClientID = "GOOGLE_CLIENT_ID"

	// EnvClientSecret is the environment variable holding the OAuth client secret.
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"

	// cacheDirName is the directory under the user cache dir that holds tokens.
	cacheDirName = "hireloop"
)

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName ensures the account name is safe to use in a file name.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNameRe.MatchString(account) {
		return fmt.Errorf("account name %q may only contain letters, digits, hyphens and underscores", account)
	}
	return nil
}

// getTokenFilePath returns the token cache file for the given account.
func getTokenFilePath(account string) string {
	return filepath.Join(userCacheDir(), cacheDirName, "google-"+account+".token")
}

// OAuthConfig returns the OAuth2 configuration built from the environment.
// The client ID and secret must be supplied via GOOGLE_CLIENT_ID and
// GOOGLE_CLIENT_SECRET; tokens are scoped to sending mail, reading the
// user's profile and read-only Drive access.
func OAuthConfig() (*oauth2.Config, error) {
	clientID := os.Getenv(EnvClientID)
	clientSecret := os.Getenv(EnvClientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, &AuthError{
			Op:  "configure",
			Err: fmt.Errorf("%s and %s must be set", EnvClientID, EnvClientSecret),
		}
	}

	const oob = "urn:ietf:wg:oauth:2.0:oob"
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  oob,
		Scopes:       CampaignScopes,
	}, nil
}

// HasTokenForAccount checks if a cached OAuth token exists for the account.
func HasTokenForAccount(account string) bool {
	if err := validateAccountName(account); err != nil {
		return false
	}
	_, err := os.ReadFile(getTokenFilePath(account))
	return err == nil
}

// HasToken checks if a cached OAuth token exists for the default account.
func HasToken() bool {
	return HasTokenForAccount("default")
}

// GetAuthURLForAccount returns the consent URL for user authorization.
func GetAuthURLForAccount(account string) (string, error) {
	conf, err := OAuthConfig()
	if err != nil {
		return "", err
	}
	return conf.AuthCodeURL("state",
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

// SaveTokenForAccount exchanges an authorization code for tokens and caches
// them for the given account.
func SaveTokenForAccount(ctx context.Context, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return &AuthError{Op: "save", Account: account, Err: err}
	}

	conf, err := OAuthConfig()
	if err != nil {
		return err
	}

	t, err := conf.Exchange(ctx, authCode)
	if err != nil {
		return &AuthError{Op: "exchange", Account: account, Err: err}
	}

	tokenFile := getTokenFilePath(account)
	if err := os.MkdirAll(filepath.Dir(tokenFile), 0700); err != nil {
		return &AuthError{Op: "save", Account: account, Err: fmt.Errorf("failed to create cache directory: %w", err)}
	}

	tokenData := t.AccessToken + " " + t.RefreshToken
	if err := os.WriteFile(tokenFile, []byte(tokenData), 0600); err != nil {
		return &AuthError{Op: "save", Account: account, Err: fmt.Errorf("failed to write token file: %w", err)}
	}

	return nil
}

// SaveToken exchanges an authorization code for tokens for the default account.
func SaveToken(ctx context.Context, authCode string) error {
	return SaveTokenForAccount(ctx, "default", authCode)
}

// GetTokenSourceForAccount returns an OAuth2 token source backed by the cached
// token for the account. The source refreshes the access token transparently;
// an expired refresh token or revoked consent surfaces as an AuthError.
func GetTokenSourceForAccount(ctx context.Context, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, &AuthError{Op: "token", Account: account, Err: err}
	}

	conf, err := OAuthConfig()
	if err != nil {
		return nil, err
	}

	slurp, err := os.ReadFile(getTokenFilePath(account))
	if err != nil {
		return nil, &AuthError{Op: "token", Account: account, Err: ErrNoToken}
	}

	f := strings.Fields(strings.TrimSpace(string(slurp)))
	if len(f) != 2 {
		return nil, &AuthError{Op: "token", Account: account, Err: fmt.Errorf("invalid token format")}
	}

	// Expiry in the past forces an immediate refresh so the refresh token is
	// validated up front rather than on the first API call.
	ts := conf.TokenSource(ctx, &oauth2.Token{
		AccessToken:  f[0],
		TokenType:    "Bearer",
		RefreshToken: f[1],
		Expiry:       time.Unix(1, 0),
	})

	if _, err := ts.Token(); err != nil {
		return nil, &AuthError{Op: "refresh", Account: account, Err: err}
	}

	return ts, nil
}

// GetHTTPClientForAccount returns an HTTP client that injects OAuth2
// credentials for the given account.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors.
func GetHTTPClientForAccount(ctx context.Context, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, account)
	if err != nil {
		return nil, err
	}

	client := oauth2.NewClient(ctx, ts)

	// Force HTTP/1.1 by disabling HTTP/2
	transport := client.Transport.(*oauth2.Transport)
	transport.Base = &http.Transport{
		ForceAttemptHTTP2: false,
	}

	return client, nil
}

// GetHTTPClient returns an authenticated HTTP client for the default account.
func GetHTTPClient(ctx context.Context) (*http.Client, error) {
	return GetHTTPClientForAccount(ctx, "default")
}

// GetAuthenticationErrorMessage returns a user-facing message describing how
// to authorize the given account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("no valid Google OAuth token found for account %q. Run 'hireloop auth --account %s' to authorize access", account, account)
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		panic("No Windows TEMP or TMP environment variables found")
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}
