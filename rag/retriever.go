package rag

import (
	"context"
	"errors"

	"ng12-backend/models"
)

// RetrievalError wraps any failure while turning a query into candidate
// excerpts (embedding the query or searching the index).
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string { return "retrieval failed: " + e.Err.Error() }
func (e *RetrievalError) Unwrap() error { return e.Err }

// Embedder converts text into the index's vector space. The query must use
// the same embedding model as the stored chunks.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Searcher is the nearest-neighbors capability of the evidence store.
type Searcher interface {
	Search(vec []float32, k int) []Hit
}

// Retriever maps a retrieval query to candidate citations.
type Retriever struct {
	embedder Embedder
	index    Searcher
}

func NewRetriever(embedder Embedder, index Searcher) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the query and returns the topK nearest guideline excerpts
// in the store's similarity order. Excerpts are capped at 500 characters.
// Sentinel hits without a chunk id are skipped.
func (r *Retriever) Retrieve(ctx context.Context, query string, topK int) ([]models.Citation, error) {
	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, &RetrievalError{Err: err}
	}
	if len(vecs) == 0 {
		return nil, &RetrievalError{Err: errors.New("embedder returned no vector")}
	}

	var citations []models.Citation
	for _, hit := range r.index.Search(vecs[0], topK) {
		if hit.ChunkID == "" {
			continue
		}
		excerpt := hit.Text
		if len(excerpt) > excerptCap {
			excerpt = excerpt[:excerptCap]
		}
		citations = append(citations, models.Citation{
			Source:  hit.Source,
			Page:    hit.Page,
			ChunkID: hit.ChunkID,
			Excerpt: excerpt,
		})
	}
	return citations, nil
}
