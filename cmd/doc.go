// Package cmd implements the command-line interface for hireloop.
//
// This package provides the following commands:
//   - auth: Run the OAuth2 consent flow and cache a token for an account
//   - run: Execute an outreach campaign end to end
//   - preview: Generate one email without sending, for template iteration
//   - version: Display version information
package cmd
