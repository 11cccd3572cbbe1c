// Package docx provides a Normaliser for Word documents.
package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

const documentPart = "word/document.xml"

// Normaliser handles DOCX documents.
type Normaliser struct{}

// New creates a new DOCX normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Extensions returns the file extensions this normaliser handles.
func (n *Normaliser) Extensions() []string {
	return []string{"docx"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise returns the main document text: one line per paragraph and
// one tab-separated line per table row.
func (n *Normaliser) Normalise(ctx context.Context, content []byte, filename string) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("%w: %s is not a docx archive", domain.ErrInvalidInput, filename)
	}

	part, err := archive.Open(documentPart)
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: %s has no %s", domain.ErrInvalidInput, filename, documentPart)
	}
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", domain.ErrInvalidInput, documentPart, err)
	}
	defer part.Close()

	text, err := extract(ctx, part)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, filename, err)
	}
	return text, nil
}

// extract streams WordprocessingML, keeping w:t runs and translating
// tabs and breaks. Deleted text (w:delText) and field codes are dropped.
func extract(ctx context.Context, r io.Reader) (string, error) {
	var (
		dec    = xml.NewDecoder(r)
		out    strings.Builder
		para   strings.Builder
		cell   []string
		row    []string
		tables int
		inText bool
	)

	emit := func(line string) {
		if line = strings.TrimRight(line, " \t"); line == "" {
			return
		}
		if out.Len() > 0 {
			out.WriteByte('\n')
		}
		out.WriteString(line)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("malformed %s: %w", documentPart, err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "tab":
				para.WriteByte('\t')
			case "br", "cr":
				para.WriteByte('\n')
			case "tbl":
				tables++
			}

		case xml.CharData:
			if inText {
				para.Write(el)
			}

		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				if tables > 0 {
					if s := strings.Join(strings.Fields(para.String()), " "); s != "" {
						cell = append(cell, s)
					}
				} else {
					for _, line := range strings.Split(para.String(), "\n") {
						emit(line)
					}
				}
				para.Reset()
			case "tc":
				row = append(row, strings.Join(cell, " "))
				cell = nil
			case "tr":
				emit(strings.Join(row, "\t"))
				row = nil
			case "tbl":
				tables--
			}
		}
	}

	return out.String(), nil
}
