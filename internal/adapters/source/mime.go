package source

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/mikey/inbox-clusterer/internal/core"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/htmlindex"
)

// maxPartDepth bounds nested multipart recursion
const maxPartDepth = 8

var wordDecoder = &mime.WordDecoder{CharsetReader: charsetReader}

// charsetReader decodes input in the named charset to UTF-8
func charsetReader(charset string, input io.Reader) (io.Reader, error) {
	charset = strings.ToLower(strings.TrimSpace(charset))
	if charset == "" || charset == "utf-8" || charset == "us-ascii" {
		return input, nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, fmt.Errorf("unsupported charset %q: %w", charset, err)
	}
	return enc.NewDecoder().Reader(input), nil
}

// decodeHeader decodes RFC 2047 encoded words, returning the raw value on failure
func decodeHeader(value string) string {
	decoded, err := wordDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// parseMessage reads a raw RFC 5322 message into an email record
func parseMessage(r io.Reader) (core.EmailRecord, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return core.EmailRecord{}, fmt.Errorf("failed to parse email message: %w", err)
	}

	body, err := extractText(msg.Header.Get("Content-Type"), msg.Header.Get("Content-Transfer-Encoding"), msg.Body, 0)
	if err != nil {
		return core.EmailRecord{}, fmt.Errorf("failed to extract text content: %w", err)
	}

	record := core.EmailRecord{
		ID:      strings.Trim(msg.Header.Get("Message-Id"), "<> "),
		Subject: decodeHeader(msg.Header.Get("Subject")),
		Body:    body,
		Sender:  senderAddress(msg.Header.Get("From")),
	}
	if date, err := msg.Header.Date(); err == nil {
		record.Timestamp = date.UTC().Format(time.RFC3339)
	} else {
		record.Timestamp = msg.Header.Get("Date")
	}
	return record, nil
}

// senderAddress returns the bare address of a From header
func senderAddress(from string) string {
	if from == "" {
		return ""
	}
	parser := &mail.AddressParser{WordDecoder: wordDecoder}
	addr, err := parser.Parse(from)
	if err != nil {
		return decodeHeader(from)
	}
	return addr.Address
}

// extractText returns the readable text of a MIME entity. text/plain parts are
// preferred; text/html is converted to text only when no plain part exists.
func extractText(contentType, transferEncoding string, body io.Reader, depth int) (string, error) {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// If we can't parse the Content-Type, treat the body as plain text
		mediaType, params = "text/plain", map[string]string{}
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		boundary, ok := params["boundary"]
		if !ok || depth >= maxPartDepth {
			return "", nil
		}
		return extractMultipart(multipart.NewReader(body, boundary), depth)
	}

	if !strings.HasPrefix(mediaType, "text/") {
		return "", nil
	}

	content, err := decodePart(body, transferEncoding, params["charset"])
	if err != nil {
		return "", err
	}
	if mediaType == "text/html" {
		return htmlToText(content), nil
	}
	return content, nil
}

func extractMultipart(mr *multipart.Reader, depth int) (string, error) {
	var plain, htmlText bytes.Buffer
	for {
		// NextRawPart keeps Content-Transfer-Encoding for decodePart
		part, err := mr.NextRawPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Return what we have so far
			break
		}

		partType := part.Header.Get("Content-Type")
		if strings.EqualFold(part.Header.Get("Content-Disposition"), "attachment") ||
			strings.HasPrefix(strings.ToLower(part.Header.Get("Content-Disposition")), "attachment;") {
			continue
		}

		text, err := extractText(partType, part.Header.Get("Content-Transfer-Encoding"), part, depth+1)
		if err != nil || text == "" {
			continue
		}
		if strings.Contains(strings.ToLower(partType), "text/html") {
			htmlText.WriteString(text)
			htmlText.WriteString("\n")
		} else {
			plain.WriteString(text)
			plain.WriteString("\n")
		}
	}

	if plain.Len() > 0 {
		return strings.TrimSpace(plain.String()), nil
	}
	return strings.TrimSpace(htmlText.String()), nil
}

// decodePart undoes the transfer encoding and converts the charset to UTF-8
func decodePart(body io.Reader, transferEncoding, charset string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(transferEncoding)) {
	case "base64":
		body = base64.NewDecoder(base64.StdEncoding, body)
	case "quoted-printable":
		body = quotedprintable.NewReader(body)
	}

	reader, err := charsetReader(charset, body)
	if err != nil {
		// Fall back to the undecoded bytes
		reader = body
	}
	content, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(content), ""), nil
}

// htmlToText returns the visible text of an HTML document
func htmlToText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var sb strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skip++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if tag := string(name); (tag == "script" || tag == "style") && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
				sb.WriteString(" ")
			}
		}
	}
}
