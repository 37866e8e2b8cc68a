// Package gemini provides a client for the Generative Language API used to
// personalize outreach emails.
//
// The client speaks the REST generateContent endpoint directly with the
// gemini-1.5-flash model, which fits in the provider's free tier (1,500
// requests per day, 15 per minute). Transient provider failures (quota
// exhaustion, server errors) are retried with exponential backoff up to a
// bounded budget; permanent failures surface immediately as GenerationError.
//
// The client performs no pacing of its own. The campaign runner owns a rate
// limiter that keeps generation calls at least four seconds apart, so pacing
// and cancellation are handled in one place.
package gemini
