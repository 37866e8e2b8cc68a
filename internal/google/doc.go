// Package google provides OAuth2 authentication and token management for Google APIs.
//
// Tokens are cached per account under the user cache directory so a single
// machine can run campaigns for multiple Gmail accounts. The OAuth client
// credentials are supplied through the environment; the granted scopes cover
// mail send, read-only mail profile access and read-only Drive access.
package google
