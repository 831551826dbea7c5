package contract

import (
	"context"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/specification"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	// UpdateEmbedding sets only the embedding column of one chunk.
	UpdateEmbedding(ctx context.Context, chunkId string, embedding []float32) error
	DeleteBySourceFile(ctx context.Context, sourceFile string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SearchSimilarWithScore runs a cosine nearest-neighbor query and returns
	// chunks whose similarity (1 - cosine distance) is at least threshold,
	// best match first. Chunks without an embedding are never returned.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*entity.ScoredDocumentChunk, error)

	// ListSources aggregates chunk counts per source file.
	ListSources(ctx context.Context) ([]*entity.SourceSummary, error)
}
