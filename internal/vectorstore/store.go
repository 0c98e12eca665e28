// Package vectorstore persists per-collection embedding records in one
// SQLite file per collection and answers brute-force cosine
// nearest-neighbour queries over them.
package vectorstore

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/meridianhq/docsearch/internal/domain"
)

const (
	metaKeyDimension = "dimension"
	metaKeyEmbedder  = "embedder"

	collectionFileExt = ".db"
)

// Collection names become file names, so they are restricted to a safe
// character set.
var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Store manages all collections under a single root directory. Writes
// to one collection are serialized by a per-collection mutex; reads and
// writes on different collections proceed independently.
type Store struct {
	root string

	mu          sync.Mutex
	collections map[string]*collection
}

type collection struct {
	name string
	db   *sql.DB

	// Serializes upserts and deletes so the dimension check and the
	// write it guards cannot interleave.
	writeMu sync.Mutex
}

// Open creates the root directory if needed and returns a Store.
// Existing collection files are picked up lazily on first access.
func Open(root string) (*Store, error) {
	if root == "" {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeInvalidConfiguration,
			"invalid configuration",
			errors.New("vector db path must not be empty"),
		)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create vector db directory: %w", err)
	}
	return &Store{
		root:        root,
		collections: make(map[string]*collection),
	}, nil
}

// Close closes all open collection handles.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for name, c := range s.collections {
		if err := c.db.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close collection %s: %w", name, err)
		}
		delete(s.collections, name)
	}
	return firstErr
}

// CollectionPath returns the file backing the named collection. Each
// collection is one addressable file, so backup/restore can operate on
// collections independently.
func (s *Store) CollectionPath(name string) string {
	return filepath.Join(s.root, name+collectionFileExt)
}

// Upsert appends or replaces records by chunk id. The first upsert into
// a collection establishes its dimension and embedder variant; any
// later mismatch fails without touching the collection.
func (s *Store) Upsert(ctx context.Context, name, variant string, records []domain.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Validate the batch before open so a rejected first upsert does
	// not leave an empty collection file behind.
	dim := len(records[0].Vector)
	for _, r := range records {
		if len(r.Vector) != dim {
			return domain.NewDomainErrorWithCause(
				domain.ErrCodeDimensionMismatch,
				"embedding dimension mismatch",
				fmt.Errorf("record %s has dimension %d, batch started with %d", r.ChunkID, len(r.Vector), dim),
			)
		}
	}

	c, err := s.open(name, true)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.checkSpace(ctx, dim, variant); err != nil {
		return err
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin upsert transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, r := range records {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO chunks
				(chunk_id, source_id, chunk_index, start_offset, end_offset, content, embedding, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(chunk_id) DO UPDATE SET
				source_id = excluded.source_id,
				chunk_index = excluded.chunk_index,
				start_offset = excluded.start_offset,
				end_offset = excluded.end_offset,
				content = excluded.content,
				embedding = excluded.embedding`,
			r.ChunkID,
			r.SourceID,
			r.ChunkIndex,
			r.StartOffset,
			r.EndOffset,
			r.Content,
			encodeVector(r.Vector),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", r.ChunkID, err)
		}
	}

	return tx.Commit()
}

// Query returns up to k records ordered by descending cosine
// similarity, ties broken by ascending chunk id. k is clamped to the
// collection size.
func (s *Store) Query(ctx context.Context, name string, vector []float32, k int) ([]domain.SearchHit, error) {
	c, err := s.open(name, false)
	if err != nil {
		return nil, err
	}

	dim, _, err := c.space(ctx)
	if err != nil {
		return nil, err
	}
	if dim > 0 && len(vector) != dim {
		return nil, domain.NewDomainErrorWithCause(
			domain.ErrCodeDimensionMismatch,
			"embedding dimension mismatch",
			fmt.Errorf("query vector has dimension %d, collection %s holds %d", len(vector), name, dim),
		)
	}
	if k <= 0 {
		return nil, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT chunk_id, source_id, chunk_index, content, embedding FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection %s: %w", name, err)
	}
	defer rows.Close()

	var hits []domain.SearchHit
	for rows.Next() {
		var hit domain.SearchHit
		var blob []byte
		if err := rows.Scan(&hit.ChunkID, &hit.SourceID, &hit.ChunkIndex, &hit.Content, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}
		hit.Score = cosine(vector, decodeVector(blob))
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ChunkID < hits[j].ChunkID
	})

	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Delete removes the given chunk ids. Deleting a non-existent id or a
// collection that was never created is a no-op.
func (s *Store) Delete(ctx context.Context, name string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}

	c, err := s.open(name, false)
	if err != nil {
		if errors.Is(err, domain.ErrCollectionNotFound) {
			return nil
		}
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunkIDs)), ",")
	args := make([]any, len(chunkIDs))
	for i, id := range chunkIDs {
		args[i] = id
	}

	_, err = c.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM chunks WHERE chunk_id IN (%s)`, placeholders), args...)
	if err != nil {
		return fmt.Errorf("failed to delete chunks from %s: %w", name, err)
	}
	return nil
}

// ListCollections returns the names of all collections on disk, sorted.
func (s *Store) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read vector db directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), collectionFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), collectionFileExt))
	}
	sort.Strings(names)
	return names, nil
}

// Stats returns record count, dimension and embedder variant for a
// collection.
func (s *Store) Stats(ctx context.Context, name string) (*domain.CollectionStats, error) {
	c, err := s.open(name, false)
	if err != nil {
		return nil, err
	}

	dim, variant, err := c.space(ctx)
	if err != nil {
		return nil, err
	}

	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count chunks in %s: %w", name, err)
	}

	return &domain.CollectionStats{
		Name:      name,
		Records:   count,
		Dimension: dim,
		Embedder:  variant,
	}, nil
}

// DropCollection closes and removes a collection file entirely.
func (s *Store) DropCollection(name string) error {
	if err := validateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	if c, ok := s.collections[name]; ok {
		c.db.Close()
		delete(s.collections, name)
	}
	s.mu.Unlock()

	path := s.CollectionPath(name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeCollectionNotFound,
			"collection not found",
			fmt.Errorf("collection %q", name),
		)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove collection %s: %w", name, err)
	}
	return nil
}

func (s *Store) open(name string, create bool) (*collection, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.collections[name]; ok {
		return c, nil
	}

	path := s.CollectionPath(name)
	if !create {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, domain.NewDomainErrorWithCause(
				domain.ErrCodeCollectionNotFound,
				"collection not found",
				fmt.Errorf("collection %q", name),
			)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open collection %s: %w", name, err)
	}

	if err := migrateSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate collection %s: %w", name, err)
	}

	c := &collection{name: name, db: db}
	s.collections[name] = c
	return c, nil
}

// checkSpace verifies the incoming dimension and variant against the
// collection's pinned embedding space, establishing it on first write.
func (c *collection) checkSpace(ctx context.Context, dim int, variant string) error {
	storedDim, storedVariant, err := c.space(ctx)
	if err != nil {
		return err
	}

	if storedDim == 0 {
		if _, err := c.db.ExecContext(ctx,
			`INSERT INTO collection_meta (key, value) VALUES (?, ?), (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			metaKeyDimension, strconv.Itoa(dim),
			metaKeyEmbedder, variant,
		); err != nil {
			return fmt.Errorf("failed to pin collection space: %w", err)
		}
		return nil
	}

	if storedDim != dim {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeDimensionMismatch,
			"embedding dimension mismatch",
			fmt.Errorf("collection %s holds dimension %d, got %d", c.name, storedDim, dim),
		)
	}
	if storedVariant != "" && variant != "" && storedVariant != variant {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeDimensionMismatch,
			"embedding dimension mismatch",
			fmt.Errorf("collection %s was built with the %s embedder, got %s", c.name, storedVariant, variant),
		)
	}
	return nil
}

// space returns the pinned (dimension, variant), or (0, "") when the
// collection has not been written yet.
func (c *collection) space(ctx context.Context) (int, string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT key, value FROM collection_meta`)
	if err != nil {
		return 0, "", fmt.Errorf("failed to read collection meta: %w", err)
	}
	defer rows.Close()

	var dim int
	var variant string
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return 0, "", fmt.Errorf("failed to scan collection meta: %w", err)
		}
		switch key {
		case metaKeyDimension:
			dim, err = strconv.Atoi(value)
			if err != nil {
				return 0, "", fmt.Errorf("corrupt dimension value %q: %w", value, err)
			}
		case metaKeyEmbedder:
			variant = value
		}
	}
	return dim, variant, rows.Err()
}

func validateName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return domain.NewDomainErrorWithCause(
			domain.ErrCodeInvalidConfiguration,
			"invalid configuration",
			fmt.Errorf("invalid collection name %q", name),
		)
	}
	return nil
}

// cosine returns the cosine similarity of a and b, defined as 0 when
// either vector has zero norm.
func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(b []byte) []float32 {
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
