package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/hireloop/hireloop/internal/google"
)

// Client wraps the Gmail Users service for sending campaign mail.
type Client struct {
	svc     *gmail.UsersService
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// HasTokenForAccount checks if a valid OAuth token exists for the specified account.
func HasTokenForAccount(account string) bool {
	return google.HasTokenForAccount(account)
}

// HasToken checks if a valid OAuth token exists for the default account.
func HasToken() bool {
	return google.HasToken()
}

// NewClientForAccount creates a new Gmail client with OAuth2 authentication
// for a specific account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", google.GetAuthenticationErrorMessage(account), err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// NewClient creates a new Gmail client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// SendReceipt identifies a successfully dispatched message.
type SendReceipt struct {
	MessageID string
	ThreadID  string
}

// Send dispatches a single message through the authenticated account.
// One message per recipient; batching is deliberately not supported because
// the campaign runner paces individual sends.
func (c *Client) Send(ctx context.Context, msg *Message) (*SendReceipt, error) {
	raw, err := msg.Raw()
	if err != nil {
		return nil, &SendError{Op: "encode", Recipient: msg.To, Err: err}
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return nil, &SendError{Op: "send", Recipient: msg.To, Err: err}
	}

	return &SendReceipt{
		MessageID: sent.Id,
		ThreadID:  sent.ThreadId,
	}, nil
}

// Profile returns the email address of the authenticated account.
func (c *Client) Profile(ctx context.Context) (string, error) {
	profile, err := c.svc.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get Gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}
