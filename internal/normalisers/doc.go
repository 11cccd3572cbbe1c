// Package normalisers provides the text extraction used by document
// ingestion. Each Normaliser knows how to turn one family of file
// extensions into plain text; the Registry picks one by the uploaded
// filename and falls back to a lossy UTF-8 decode for anything else.
//
// Normalisers are registered with the Registry at startup.
package normalisers
