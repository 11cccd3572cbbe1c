package normalisers

import (
	"github.com/custodia-labs/ragent/internal/normalisers/docx"
	"github.com/custodia-labs/ragent/internal/normalisers/eml"
	"github.com/custodia-labs/ragent/internal/normalisers/html"
	"github.com/custodia-labs/ragent/internal/normalisers/jsontext"
	"github.com/custodia-labs/ragent/internal/normalisers/pdf"
	"github.com/custodia-labs/ragent/internal/normalisers/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// RegisterDefaults registers the built-in normalisers.
func RegisterDefaults(r *Registry) {
	r.Register(plaintext.New())
	r.Register(jsontext.New())
	r.Register(pdf.New())
	r.Register(html.New())
	r.Register(docx.New())
	r.Register(eml.New())
}
