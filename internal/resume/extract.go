package resume

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// MaxSummaryLength caps the extracted resume text passed into generation
// prompts, keeping prompts well under the model's token limits.
const MaxSummaryLength = 2000

// ExtractText extracts the plain text content of a PDF resume.
func ExtractText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("resume file is empty")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to parse resume PDF: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract resume text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read resume text: %w", err)
	}

	text := strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("resume PDF contains no extractable text")
	}
	return text, nil
}

// Summary extracts resume text capped at MaxSummaryLength characters for use
// in a generation prompt.
func Summary(data []byte) (string, error) {
	text, err := ExtractText(data)
	if err != nil {
		return "", err
	}
	return truncate(text, MaxSummaryLength), nil
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
