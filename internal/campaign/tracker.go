package campaign

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/hireloop/hireloop/internal/recipients"
)

// Result is the recorded outcome for one recipient.
type Result struct {
	Record    recipients.Record
	Outcome   Outcome
	Reason    string // failure or skip reason, empty for Sent
	Subject   string
	MessageID string // Gmail message ID for Sent results
	Timestamp time.Time
}

// Summary aggregates a campaign's results.
type Summary struct {
	Total   int
	Sent    int
	Failed  int
	Skipped int
	Pending int
}

// Tracker records per-recipient outcomes for a campaign run. It is purely
// additive: every record starts Pending and transitions exactly once to a
// terminal outcome. Past entries are never rewritten.
type Tracker struct {
	mu      sync.Mutex
	records []recipients.Record
	results []Result
	index   map[int]int // source row -> results slice position
}

// NewTracker creates a tracker with one Pending entry per recipient, in
// source order.
func NewTracker(records []recipients.Record) *Tracker {
	t := &Tracker{
		records: records,
		results: make([]Result, len(records)),
		index:   make(map[int]int, len(records)),
	}
	for i, rec := range records {
		t.results[i] = Result{Record: rec, Outcome: Pending}
		t.index[rec.Row] = i
	}
	return t
}

// Records returns the recipient list the tracker was built from, in source
// order.
func (t *Tracker) Records() []recipients.Record {
	return t.records
}

// Record transitions a recipient from Pending to a terminal outcome. A
// second transition for the same recipient is rejected; the cursor never
// revisits a prior record.
func (t *Tracker) Record(rec recipients.Record, outcome Outcome, reason, subject, messageID string) error {
	if !outcome.Terminal() {
		return fmt.Errorf("outcome %s is not terminal", outcome)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	i, ok := t.index[rec.Row]
	if !ok {
		return fmt.Errorf("unknown recipient row %d", rec.Row)
	}
	if t.results[i].Outcome != Pending {
		return fmt.Errorf("recipient row %d already has outcome %s", rec.Row, t.results[i].Outcome)
	}

	t.results[i].Outcome = outcome
	t.results[i].Reason = reason
	t.results[i].Subject = subject
	t.results[i].MessageID = messageID
	t.results[i].Timestamp = time.Now()
	return nil
}

// Results returns a copy of all entries in source order.
func (t *Tracker) Results() []Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Result, len(t.results))
	copy(out, t.results)
	return out
}

// Summary returns aggregate counts for the run.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Summary{Total: len(t.results)}
	for _, r := range t.results {
		switch r.Outcome {
		case Sent:
			s.Sent++
		case Failed:
			s.Failed++
		case Skipped:
			s.Skipped++
		default:
			s.Pending++
		}
	}
	return s
}

// ExportCSV writes the campaign report: one row per recipient mapping
// recipient to outcome, reason and message ID.
func (t *Tracker) ExportCSV(w io.Writer) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	cw := csv.NewWriter(w)
	header := []string{"company", "recruiter", "email", "subject", "outcome", "reason", "message_id", "timestamp"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	for _, r := range t.results {
		ts := ""
		if !r.Timestamp.IsZero() {
			ts = r.Timestamp.Format(time.RFC3339)
		}
		row := []string{
			r.Record.Company,
			r.Record.Recruiter,
			r.Record.Email,
			r.Subject,
			r.Outcome.String(),
			r.Reason,
			r.MessageID,
			ts,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write report row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
