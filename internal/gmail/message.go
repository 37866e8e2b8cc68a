package gmail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"
)

const (
	// MaxAttachmentSize defines the maximum attachment size in bytes (25MB),
	// the limit Gmail enforces on outgoing messages.
	MaxAttachmentSize = 25 * 1024 * 1024
)

// Attachment is a file attached to an outgoing message.
type Attachment struct {
	Filename string
	MimeType string
	Data     []byte
}

// Message is a single outgoing email. The plain-text body is converted to
// HTML paragraphs when the message is encoded.
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Raw encodes the message as a base64url MIME document, the format the Gmail
// send API expects in Message.Raw.
func (m *Message) Raw() (string, error) {
	if m.To == "" {
		return "", fmt.Errorf("message recipient is required")
	}
	if m.Attachment != nil && len(m.Attachment.Data) > MaxAttachmentSize {
		return "", fmt.Errorf("attachment size %d exceeds maximum size %d", len(m.Attachment.Data), MaxAttachmentSize)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "To: %s\r\n", m.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", m.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	buf.WriteString("\r\n")

	htmlHeader := textproto.MIMEHeader{}
	htmlHeader.Set("Content-Type", "text/html; charset=UTF-8")
	part, err := w.CreatePart(htmlHeader)
	if err != nil {
		return "", fmt.Errorf("failed to create body part: %w", err)
	}
	if _, err := part.Write([]byte(bodyToHTML(m.Body))); err != nil {
		return "", fmt.Errorf("failed to write body part: %w", err)
	}

	if m.Attachment != nil {
		mimeType := m.Attachment.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}

		attHeader := textproto.MIMEHeader{}
		attHeader.Set("Content-Type", fmt.Sprintf("%s; name=%q", mimeType, m.Attachment.Filename))
		attHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.Attachment.Filename))
		attHeader.Set("Content-Transfer-Encoding", "base64")

		part, err := w.CreatePart(attHeader)
		if err != nil {
			return "", fmt.Errorf("failed to create attachment part: %w", err)
		}
		if _, err := part.Write(wrapBase64(m.Attachment.Data)); err != nil {
			return "", fmt.Errorf("failed to write attachment part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize message: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// bodyToHTML converts a plain-text body into a small HTML document. Double
// newlines delimit paragraphs; single newlines become <br> within a paragraph.
func bodyToHTML(text string) string {
	var paragraphs []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		escaped := html.EscapeString(p)
		escaped = strings.ReplaceAll(escaped, "\n", "<br>")
		paragraphs = append(paragraphs, fmt.Sprintf(`<p style="margin: 8px 0; line-height: 1.4;">%s</p>`, escaped))
	}

	return fmt.Sprintf(`<html>
<head>
<meta charset="UTF-8">
<style>
body { font-family: Arial, sans-serif; line-height: 1.4; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
</style>
</head>
<body>
%s
</body>
</html>`, strings.Join(paragraphs, "\n"))
}

// wrapBase64 encodes data as base64 with RFC 2045 line wrapping.
func wrapBase64(data []byte) []byte {
	encoded := base64.StdEncoding.EncodeToString(data)

	const lineLen = 76
	var buf bytes.Buffer
	for len(encoded) > lineLen {
		buf.WriteString(encoded[:lineLen])
		buf.WriteString("\r\n")
		encoded = encoded[lineLen:]
	}
	buf.WriteString(encoded)
	return buf.Bytes()
}
