// Package eml provides a Normaliser for RFC 5322 email messages.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/normalisers/html"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// maxDepth bounds multipart nesting.
const maxDepth = 8

// headers are rendered above the body in this order.
var headers = []string{"From", "To", "Cc", "Date", "Subject"}

// Normaliser handles EML documents.
type Normaliser struct{}

// New creates a new EML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"eml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise renders the address, date and subject headers followed by the
// message body. Plain text parts win over HTML; attachments are skipped.
func (n *Normaliser) Normalise(_ context.Context, content []byte, filename string) (string, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not an email message", domain.ErrInvalidInput, filename)
	}

	var b body
	err = b.collect(
		msg.Header.Get("Content-Type"),
		msg.Header.Get("Content-Transfer-Encoding"),
		msg.Body,
		0,
	)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}

	var out strings.Builder
	dec := mime.WordDecoder{CharsetReader: charset.NewReaderLabel}
	for _, name := range headers {
		raw := msg.Header.Get(name)
		if raw == "" {
			continue
		}
		if decoded, err := dec.DecodeHeader(raw); err == nil {
			raw = decoded
		}
		fmt.Fprintf(&out, "%s: %s\n", name, raw)
	}
	out.WriteString("\n")
	out.WriteString(b.text())

	return strings.TrimSpace(out.String()), nil
}

// body accumulates the readable parts of a message.
type body struct {
	plain []string
	html  []string
}

func (b *body) text() string {
	if len(b.plain) > 0 {
		return strings.Join(b.plain, "\n")
	}
	return strings.Join(b.html, "\n")
}

// collect decodes one entity and files its text, recursing into multiparts.
func (b *body) collect(contentType, transferEncoding string, r io.Reader, depth int) error {
	if contentType == "" {
		contentType = "text/plain"
	}
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, params = "text/plain", nil
	}

	r = decodeTransfer(transferEncoding, r)

	if strings.HasPrefix(mediaType, "multipart/") {
		if depth >= maxDepth {
			return nil
		}
		return b.collectParts(r, params["boundary"], depth+1)
	}
	if mediaType != "text/plain" && mediaType != "text/html" {
		return nil
	}

	if cs := params["charset"]; cs != "" {
		if decoded, err := charset.NewReaderLabel(cs, r); err == nil {
			r = decoded
		}
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read %s part: %w", mediaType, err)
	}

	if mediaType == "text/html" {
		b.html = append(b.html, html.StripTags(string(data)))
	} else {
		b.plain = append(b.plain, strings.TrimRight(string(data), "\r\n"))
	}
	return nil
}

func (b *body) collectParts(r io.Reader, boundary string, depth int) error {
	if boundary == "" {
		return errors.New("multipart body without boundary")
	}

	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextRawPart()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("multipart: %w", err)
		}

		if isAttachment(part.Header.Get("Content-Disposition")) {
			part.Close()
			continue
		}
		err = b.collect(
			part.Header.Get("Content-Type"),
			part.Header.Get("Content-Transfer-Encoding"),
			part,
			depth,
		)
		part.Close()
		if err != nil {
			return err
		}
	}
}

func decodeTransfer(encoding string, r io.Reader) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	default:
		return r
	}
}

func isAttachment(disposition string) bool {
	d, _, err := mime.ParseMediaType(disposition)
	return err == nil && d == "attachment"
}
