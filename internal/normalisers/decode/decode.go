// Package decode turns raw file bytes into UTF-8 text.
package decode

import (
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Text decodes content as UTF-8, honouring a UTF-8 or UTF-16 byte order
// mark when present. The BOM itself is dropped and invalid sequences are
// replaced with U+FFFD, so decoding never fails on malformed input.
func Text(content []byte) string {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return string(content)
	}
	return string(out)
}
