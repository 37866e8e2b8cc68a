// Package resume extracts plain text from a PDF resume for use in
// personalization prompts. Extracted text is capped so prompts stay within
// the generation model's limits.
package resume
