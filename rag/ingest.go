package rag

import (
	"context"
	"fmt"
	"log"
	"strings"

	pdf "rsc.io/pdf"
)

const sourceLabel = "NG12 PDF"

// extractPDFPages returns the text of every page. Pages without a text layer
// come back empty rather than failing the whole document.
func extractPDFPages(path string) ([]string, error) {
	r, err := pdf.Open(path)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		var buf strings.Builder
		for _, t := range p.Content().Text {
			buf.WriteString(t.S)
			buf.WriteString(" ")
		}
		pages = append(pages, buf.String())
	}
	return pages, nil
}

// Ingest is the one-time pipeline: extract the guideline PDF, chunk it, embed
// every chunk and persist everything into a fresh index at indexPath.
func Ingest(ctx context.Context, pdfPath, indexPath string, embedder Embedder) (int, error) {
	pages, err := extractPDFPages(pdfPath)
	if err != nil {
		return 0, fmt.Errorf("extracting %s: %w", pdfPath, err)
	}

	chunks := buildChunks(sourceLabel, pages)
	if len(chunks) == 0 {
		return 0, fmt.Errorf("no text extracted from %s", pdfPath)
	}
	log.Printf("[ingest] pages=%d chunks=%d", len(pages), len(chunks))

	ix, err := Create(indexPath)
	if err != nil {
		return 0, err
	}
	defer ix.Close()

	for start := 0; start < len(chunks); start += embedBatch {
		end := start + embedBatch
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Text
		}
		vecs, err := embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding chunks %d-%d: %w", start, end-1, err)
		}
		if err := ix.Insert(batch, vecs); err != nil {
			return 0, err
		}
		log.Printf("[ingest] embedded %d/%d chunks", end, len(chunks))
	}

	return len(chunks), nil
}
