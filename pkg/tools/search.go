package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/repository/contract"
	"ai-assistant-be/pkg/embedding"
)

// DocumentSearch retrieves the nearest document chunks for a query and keeps
// only those above a fixed similarity floor.
type DocumentSearch struct {
	embedder embedding.Provider
	chunks   contract.DocumentChunkRepository
	topK     int
	minScore float64
	logger   *log.Logger
}

var _ Runner = &DocumentSearch{}

func NewDocumentSearch(
	embedder embedding.Provider,
	chunks contract.DocumentChunkRepository,
	topK int,
	minScore float64,
	logger *log.Logger,
) *DocumentSearch {
	if topK <= 0 {
		topK = 3
	}
	return &DocumentSearch{
		embedder: embedder,
		chunks:   chunks,
		topK:     topK,
		minScore: minScore,
		logger:   logger,
	}
}

// chunkPayload is the wire shape of one surviving chunk.
type chunkPayload struct {
	ChunkId int    `json:"chunk_id"`
	Content string `json:"content"`
	Source  string `json:"source"`
}

func (t *DocumentSearch) Run(ctx context.Context, query string) json.RawMessage {
	vec, err := t.embedder.Generate(ctx, query)
	if err != nil {
		t.logger.Printf("[SEARCH] embedding generation failed: %v", err)
		return errorJSON(fmt.Sprintf("An error occurred during search: %v", err))
	}

	// Fetch the raw nearest neighbors first (threshold 0) so "nothing in the
	// index" and "nothing above the floor" stay distinguishable.
	scored, err := t.chunks.SearchSimilarWithScore(ctx, vec, t.topK, 0)
	if err != nil {
		t.logger.Printf("[SEARCH] vector search failed: %v", err)
		return errorJSON(fmt.Sprintf("An error occurred during search: %v", err))
	}

	if len(scored) == 0 {
		return errorJSON("No relevant documents found.")
	}

	payload := filterChunks(scored, t.minScore)
	if len(payload) == 0 {
		return errorJSON("No relevant documents found that meet the relevance threshold.")
	}

	t.logger.Printf("[SEARCH] %d/%d chunks kept (min score %.2f)", len(payload), len(scored), t.minScore)

	b, err := json.Marshal(payload)
	if err != nil {
		return errorJSON(fmt.Sprintf("An error occurred during search: %v", err))
	}
	return b
}

// filterChunks keeps chunks at or above the similarity floor, preserving the
// index's own ranking. Chunk ids are 1-based positions in the surviving set.
func filterChunks(scored []*entity.ScoredDocumentChunk, minScore float64) []chunkPayload {
	var payload []chunkPayload
	for _, s := range scored {
		if s.Similarity < minScore {
			continue
		}
		source := s.Chunk.SourceFile
		if source == "" {
			source = "Unknown document"
		}
		payload = append(payload, chunkPayload{
			ChunkId: len(payload) + 1,
			Content: s.Chunk.Content,
			Source:  source,
		})
	}
	return payload
}
