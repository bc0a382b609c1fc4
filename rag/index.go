package rag

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
)

// ErrIndexMissing means the guideline index has not been built yet.
var ErrIndexMissing = errors.New("guideline index not found; run `ng12-backend ingest` first")

// Hit is one nearest-neighbor result, in similarity order.
type Hit struct {
	ChunkID    string
	Source     string
	Page       int
	Text       string
	Similarity float64
}

// Index is the store of guideline chunks and their embedding vectors. Chunks
// are persisted in sqlite and loaded fully into memory at open; after that
// the index is read-only and safe to share across concurrent requests
// without locking.
type Index struct {
	db      *sql.DB
	entries []indexEntry
}

type indexEntry struct {
	chunk Chunk
	vec   []float32
}

// Open loads an existing index built by a previous ingestion run.
func Open(path string) (*Index, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, ErrIndexMissing
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	ix := &Index{db: db}
	if err := ix.load(); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

// Create opens (or creates) the index file for a fresh ingestion run and
// wipes any previously stored chunks.
func Create(path string) (*Index, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	ix := &Index{db: db}
	if err := ix.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`DELETE FROM chunks`); err != nil {
		db.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) Close() error {
	return ix.db.Close()
}

func (ix *Index) createSchema() error {
	_, err := ix.db.Exec(`CREATE TABLE IF NOT EXISTS chunks (
		chunk_id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		page INTEGER NOT NULL,
		text TEXT NOT NULL,
		embedding TEXT NOT NULL
	)`)
	return err
}

func (ix *Index) load() error {
	if err := ix.createSchema(); err != nil {
		return err
	}
	rows, err := ix.db.Query(`SELECT chunk_id, source, page, text, embedding FROM chunks ORDER BY chunk_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var e indexEntry
		var embJSON string
		if err := rows.Scan(&e.chunk.ChunkID, &e.chunk.Source, &e.chunk.Page, &e.chunk.Text, &embJSON); err != nil {
			return err
		}
		if err := json.Unmarshal([]byte(embJSON), &e.vec); err != nil {
			return fmt.Errorf("decoding embedding for %s: %w", e.chunk.ChunkID, err)
		}
		ix.entries = append(ix.entries, e)
	}
	return rows.Err()
}

// Insert persists chunks with their embeddings in one transaction.
func (ix *Index) Insert(chunks []Chunk, vecs [][]float32) error {
	if len(chunks) != len(vecs) {
		return fmt.Errorf("chunk/embedding count mismatch: %d vs %d", len(chunks), len(vecs))
	}
	tx, err := ix.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO chunks (chunk_id, source, page, text, embedding) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, c := range chunks {
		embJSON, err := json.Marshal(vecs[i])
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(c.ChunkID, c.Source, c.Page, c.Text, string(embJSON)); err != nil {
			return fmt.Errorf("inserting chunk %s: %w", c.ChunkID, err)
		}
	}
	return tx.Commit()
}

// Len reports the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.entries) }

// Search returns the k chunks nearest to the query vector by cosine
// similarity, most similar first.
func (ix *Index) Search(vec []float32, k int) []Hit {
	hits := make([]Hit, 0, len(ix.entries))
	for _, e := range ix.entries {
		hits = append(hits, Hit{
			ChunkID:    e.chunk.ChunkID,
			Source:     e.chunk.Source,
			Page:       e.chunk.Page,
			Text:       e.chunk.Text,
			Similarity: cosineSimilarity(vec, e.vec),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
