package campaign

import "strings"

// Placeholder tokens recognized in subject and body templates.
var placeholderPairs = []struct {
	token string
	field string
}{
	{"[Company Name]", "company"},
	{"[COMPANY]", "company"},
	{"[Recruiter Name]", "recruiter"},
	{"[RECRUITER]", "recruiter"},
}

// Substitute replaces the recognized placeholder tokens in a template with
// the recipient's company and recruiter names. Used for subjects always, and
// for bodies when AI personalization is disabled or unavailable.
func Substitute(template, company, recruiter string) string {
	values := map[string]string{
		"company":   company,
		"recruiter": recruiter,
	}
	out := template
	for _, p := range placeholderPairs {
		out = strings.ReplaceAll(out, p.token, values[p.field])
	}
	// Collapse excessive blank lines left behind by substitution.
	for strings.Contains(out, "\n\n\n") {
		out = strings.ReplaceAll(out, "\n\n\n", "\n\n")
	}
	return out
}
