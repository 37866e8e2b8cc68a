package campaign

// Outcome is the per-recipient status within a campaign run. Pending is the
// only initial state; Sent, Failed and Skipped are terminal.
type Outcome int

const (
	Pending Outcome = iota
	Sent
	Failed
	Skipped
)

// String returns the report label for the outcome.
func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Sent:
		return "sent"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Terminal reports whether the outcome is final.
func (o Outcome) Terminal() bool {
	return o == Sent || o == Failed || o == Skipped
}
