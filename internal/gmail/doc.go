// Package gmail provides the mail dispatch client for outreach campaigns.
//
// The client wraps the Gmail Users service and supports exactly one
// operation shape the campaign runner needs: one MIME message per recipient,
// sent through the authenticated user's own account. Messages carry an HTML
// body rendered from plain text and an optional PDF attachment capped at the
// 25MB Gmail limit.
//
// Authentication uses the unified Google OAuth token from the google package;
// tokens are loaded per account from the user cache directory.
//
// Example usage:
//
//	ctx := context.Background()
//	client, err := gmail.NewClient(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	receipt, err := client.Send(ctx, &gmail.Message{
//	    To:      "recruiter@example.com",
//	    Subject: "Application for Backend Engineer",
//	    Body:    "Hello,\n\nI am writing about the open role.",
//	})
package gmail
