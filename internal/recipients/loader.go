package recipients

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Required column headers in the uploaded recipient spreadsheet. Matching is
// case-insensitive and ignores surrounding whitespace.
const (
	ColumnCompany   = "Company Name"
	ColumnRecruiter = "Recruiter"
	ColumnEmail     = "Email"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Record is one recipient row. Records are immutable once loaded; ordering
// follows the source file.
type Record struct {
	Company   string
	Recruiter string
	Email     string

	// Fields holds every column of the source row keyed by its canonical
	// header, including the required ones.
	Fields map[string]string

	// Row is the 1-based data row number in the source file (excluding the
	// header), kept for reporting.
	Row int
}

// SkippedRow records a row that was dropped during loading and why.
type SkippedRow struct {
	Row    int
	Email  string
	Reason string
}

// LoadResult is the outcome of parsing a recipient file. A row with a
// malformed or empty email is skipped, never failing the whole load.
type LoadResult struct {
	Records []Record
	Skipped []SkippedRow
}

// ParseError indicates the recipient file itself is unusable (unreadable,
// empty, or missing a required column). Per-row problems never produce a
// ParseError.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("recipient file: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("recipient file: %s", e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Load parses a CSV of recipients. The header must contain the Company Name,
// Recruiter and Email columns; extra columns are preserved as free-form
// fields on each record.
func Load(r io.Reader) (*LoadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Msg: "file is empty"}
	}
	if err != nil {
		return nil, &ParseError{Msg: "failed to read header", Err: err}
	}

	columns, err := mapHeader(header)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	row := 0
	for {
		row++
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped = append(result.Skipped, SkippedRow{Row: row, Reason: "malformed row"})
			continue
		}

		rec := Record{
			Fields: make(map[string]string, len(columns)),
			Row:    row,
		}
		for name, idx := range columns {
			if idx < len(fields) {
				rec.Fields[name] = strings.TrimSpace(fields[idx])
			}
		}
		rec.Company = rec.Fields[ColumnCompany]
		rec.Recruiter = rec.Fields[ColumnRecruiter]
		rec.Email = rec.Fields[ColumnEmail]

		if rec.Email == "" {
			result.Skipped = append(result.Skipped, SkippedRow{Row: row, Reason: "empty email"})
			continue
		}
		if !emailRe.MatchString(rec.Email) {
			result.Skipped = append(result.Skipped, SkippedRow{Row: row, Email: rec.Email, Reason: "malformed email"})
			continue
		}

		result.Records = append(result.Records, rec)
	}

	return result, nil
}

// mapHeader resolves column indices by canonical name. Required columns must
// be present; every other column keeps its trimmed header as its field name.
func mapHeader(header []string) (map[string]int, error) {
	canonical := map[string]string{
		strings.ToLower(ColumnCompany):   ColumnCompany,
		strings.ToLower(ColumnRecruiter): ColumnRecruiter,
		strings.ToLower(ColumnEmail):     ColumnEmail,
	}

	columns := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if name == "" {
			continue
		}
		if canon, ok := canonical[strings.ToLower(name)]; ok {
			name = canon
		}
		if _, dup := columns[name]; !dup {
			columns[name] = i
		}
	}

	var missing []string
	for _, required := range []string{ColumnCompany, ColumnRecruiter, ColumnEmail} {
		if _, ok := columns[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &ParseError{Msg: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", "))}
	}

	return columns, nil
}
