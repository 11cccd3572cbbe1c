// Package sqlite provides a persistent driven.VectorIndex backed by SQLite.
//
// It uses modernc.org/sqlite, a pure Go driver, so builds need no cgo. Each
// knowledge base is a row in partitions; every chunk record stores its text,
// JSON metadata and a little-endian float32 embedding blob.
//
// Queries load a partition's embeddings and rank them with a brute-force
// cosine scan, which suits local knowledge bases. Large collections belong
// in the qdrant backend.
//
// The schema lives in migrations/NNN_name.up.sql. Up scripts are embedded
// and applied in version order, each in its own transaction; the matching
// .down.sql files are for manual rollback.
//
// The database defaults to ~/.ragent/data/vectors.db and runs in WAL mode,
// so concurrent readers do not block the writer.
package sqlite
