package google

// CampaignScopes are the Google OAuth scopes required to run an outreach
// campaign. These scopes are used consistently across the application.
//
// The scopes provide access to:
//   - Gmail: send mail on the user's behalf, read the user's profile
//   - Google Drive: read-only (fetching a resume stored in Drive)
var CampaignScopes = []string{
	// Gmail scopes
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.readonly",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive.readonly",
}
