// Package campaign orchestrates an outreach run: it walks the recipient
// list in source order, builds one message per recipient (optionally
// personalized by a text generation model), paces the generation and send
// calls with rate limiters, and records exactly one terminal outcome per
// recipient in a Tracker that exports the final report as CSV.
//
// The runner keeps failures local: a generation or send failure marks that
// recipient Failed and the run continues. Only authentication failures and
// context cancellation halt the run; remaining recipients are then marked
// Skipped so the report always covers the whole input.
package campaign
