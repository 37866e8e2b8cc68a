// Package recipients parses the uploaded spreadsheet of target companies
// into an ordered list of recipient records.
//
// The loader is deliberately forgiving at the row level: a row with a
// missing or malformed email address is skipped with a recorded reason, and
// the rest of the file still loads. Only a structural problem with the file
// itself (unreadable, empty, missing required columns) fails the load.
package recipients
