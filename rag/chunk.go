// Package rag holds the retrieval side of the service: guideline chunking and
// ingestion, the sqlite-backed vector index, the retrieval query builders and
// the retriever that ties them together.
package rag

import (
	"fmt"
	"strings"
)

const (
	chunkSize    = 1200 // characters
	chunkOverlap = 200
	excerptCap   = 500
	embedBatch   = 16 // small batches avoid embedding token limits
)

// Chunk is one span of guideline text produced at ingestion time.
type Chunk struct {
	ChunkID string
	Source  string
	Page    int
	Text    string
}

// chunkText splits whitespace-normalized text into overlapping windows.
func chunkText(text string, size, overlap int) []string {
	clean := strings.Join(strings.Fields(text), " ")
	if clean == "" {
		return nil
	}

	var chunks []string
	start := 0
	for start < len(clean) {
		end := start + size
		if end > len(clean) {
			end = len(clean)
		}
		piece := strings.TrimSpace(clean[start:end])
		if piece != "" {
			chunks = append(chunks, piece)
		}
		if end == len(clean) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return chunks
}

// buildChunks chunks every page and assigns sequential chunk ids. Pages are
// numbered as in the source PDF (1-based).
func buildChunks(source string, pages []string) []Chunk {
	var chunks []Chunk
	idx := 0
	for pageNum, pageText := range pages {
		for _, piece := range chunkText(pageText, chunkSize, chunkOverlap) {
			chunks = append(chunks, Chunk{
				ChunkID: fmt.Sprintf("c%04d", idx),
				Source:  source,
				Page:    pageNum + 1,
				Text:    piece,
			})
			idx++
		}
	}
	return chunks
}
