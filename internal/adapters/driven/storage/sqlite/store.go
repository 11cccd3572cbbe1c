package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/similarity"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorIndex = (*Store)(nil)

// Store is a SQLite-backed vector index.
type Store struct {
	db   *sql.DB
	path string
}

// DatabaseFile is the file name created inside the data directory.
const DatabaseFile = "vectors.db"

// pragmas apply to every pooled connection, so they go in the DSN.
const pragmas = "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"

// NewStore opens (creating if needed) dataDir/vectors.db and brings its
// schema up to date. An empty dataDir means ~/.ragent/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".ragent", "data")
	}
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	s := &Store{path: filepath.Join(dataDir, DatabaseFile)}
	db, err := sql.Open("sqlite", s.path+pragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.db = db

	if err := s.migrate(context.Background(), migrationFS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Upsert writes records in one transaction, replacing any with the same ID.
func (s *Store) Upsert(ctx context.Context, partition string, records []driven.VectorRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO partitions (name) VALUES (?)", partition); err != nil {
		return fmt.Errorf("creating partition: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO vectors (partition, id, text, metadata, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(partition, id) DO UPDATE SET
			text = excluded.text,
			metadata = excluded.metadata,
			embedding = excluded.embedding,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		metadata, err := json.Marshal(domain.CopyMetadata(r.Metadata))
		if err != nil {
			return fmt.Errorf("marshaling metadata for %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, partition, r.ID, r.Text, string(metadata), float32SliceToBytes(r.Vector)); err != nil {
			return fmt.Errorf("upserting %s: %w", r.ID, err)
		}
	}

	return tx.Commit()
}

// storedRecord is one scanned vectors row.
type storedRecord struct {
	id       string
	text     string
	metadata map[string]any
	vector   []float32
}

// Query ranks the partition's records by cosine distance to vector.
// An unknown partition yields an empty result.
func (s *Store) Query(
	ctx context.Context, partition string, vector []float32, k int, filter domain.Filter,
) (*driven.QueryResult, error) {
	records, err := s.scan(ctx, partition, filter, true)
	if err != nil {
		return nil, err
	}

	candidates := make([]similarity.Candidate, len(records))
	for i := range records {
		candidates[i] = similarity.Candidate{
			Index:    i,
			Distance: similarity.CosineDistance(vector, records[i].vector),
		}
	}

	result := &driven.QueryResult{}
	for _, c := range similarity.TopK(candidates, k) {
		r := records[c.Index]
		result.IDs = append(result.IDs, r.id)
		result.Documents = append(result.Documents, r.text)
		result.Metadatas = append(result.Metadatas, r.metadata)
		result.Distances = append(result.Distances, c.Distance)
	}
	return result, nil
}

// DeleteWhere removes matching records and returns how many were removed.
func (s *Store) DeleteWhere(ctx context.Context, partition string, filter domain.Filter) (int, error) {
	records, err := s.scan(ctx, partition, filter, false)
	if err != nil {
		return 0, err
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	removed := 0
	for _, r := range records {
		res, err := tx.ExecContext(ctx, "DELETE FROM vectors WHERE partition = ? AND id = ?", partition, r.id)
		if err != nil {
			return 0, fmt.Errorf("deleting %s: %w", r.id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting deleted rows: %w", err)
		}
		removed += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing delete: %w", err)
	}
	return removed, nil
}

// Partitions lists partition names in sorted order.
func (s *Store) Partitions(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT name FROM partitions ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying partitions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning partition: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Count returns the number of records in a partition.
func (s *Store) Count(ctx context.Context, partition string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors WHERE partition = ?", partition).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}
	return n, nil
}

// scan loads the partition's records whose metadata matches filter.
// Filters are applied in Go so numeric metadata compares the same way as
// the in-memory backend.
func (s *Store) scan(ctx context.Context, partition string, filter domain.Filter, withVectors bool) ([]storedRecord, error) {
	query := "SELECT id, text, metadata FROM vectors WHERE partition = ? ORDER BY rowid"
	if withVectors {
		query = "SELECT id, text, metadata, embedding FROM vectors WHERE partition = ? ORDER BY rowid"
	}

	rows, err := s.db.QueryContext(ctx, query, partition)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var out []storedRecord
	for rows.Next() {
		var (
			r        storedRecord
			metadata string
			blob     []byte
		)
		dest := []any{&r.id, &r.text, &metadata}
		if withVectors {
			dest = append(dest, &blob)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning vector: %w", err)
		}
		if err := json.Unmarshal([]byte(metadata), &r.metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata for %s: %w", r.id, err)
		}
		if r.metadata == nil {
			r.metadata = map[string]any{}
		}
		if !filter.Matches(r.metadata) {
			continue
		}
		r.vector = bytesToFloat32Slice(blob)
		out = append(out, r)
	}
	return out, rows.Err()
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
