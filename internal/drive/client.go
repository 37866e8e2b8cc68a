package drive

import (
	"context"
	"fmt"
	"io"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/hireloop/hireloop/internal/google"
)

// Client wraps the Google Drive API service for read-only file access.
type Client struct {
	service *drive.Service
	account string // The account this client is associated with
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a new Google Drive client with OAuth2
// authentication for a specific account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	client, err := google.GetHTTPClientForAccount(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", google.GetAuthenticationErrorMessage(account), err)
	}

	driveService, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{
		service: driveService,
		account: account,
	}, nil
}

// NewClient creates a new Google Drive client for the default account.
func NewClient(ctx context.Context) (*Client, error) {
	return NewClientForAccount(ctx, "default")
}

// File holds the metadata and content of a downloaded Drive file.
type File struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
}

// Download fetches a file's content and metadata by ID. Used to pull a
// resume stored in Drive instead of on the local filesystem.
func (c *Client) Download(ctx context.Context, fileID string) (*File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("file ID is required")
	}

	meta, err := c.service.Files.Get(fileID).
		Context(ctx).
		Fields("id, name, mimeType, size").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get file metadata for %s: %w", fileID, err)
	}

	res, err := c.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", fileID, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content for %s: %w", fileID, err)
	}

	return &File{
		ID:       meta.Id,
		Name:     meta.Name,
		MimeType: meta.MimeType,
		Data:     data,
	}, nil
}
