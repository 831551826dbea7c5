package entity

import "time"

type DocumentChunk struct {
	Id          string
	Content     string
	SourceFile  string
	ChunkIndex  int
	TotalChunks int
	Embedding   []float32 // nil until the embedding consumer has run
	Metadata    map[string]interface{}
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ScoredDocumentChunk pairs a chunk with its cosine similarity to a query.
type ScoredDocumentChunk struct {
	Chunk      *DocumentChunk
	Similarity float64
}

// SourceSummary aggregates chunk counts per ingested source.
type SourceSummary struct {
	SourceFile string
	ChunkCount int64
}
