package tools

import (
	"testing"

	"ai-assistant-be/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoredChunk(content, source string, similarity float64) *entity.ScoredDocumentChunk {
	return &entity.ScoredDocumentChunk{
		Chunk:      &entity.DocumentChunk{Content: content, SourceFile: source},
		Similarity: similarity,
	}
}

func TestFilterChunksKeepsOnlyAboveThreshold(t *testing.T) {
	scored := []*entity.ScoredDocumentChunk{
		scoredChunk("solar basics", "energy.txt", 0.82),
		scoredChunk("loosely related", "misc.txt", 0.29),
		scoredChunk("panel maintenance", "energy.txt", 0.44),
	}

	payload := filterChunks(scored, 0.3)

	require.Len(t, payload, 2)
	assert.Equal(t, "solar basics", payload[0].Content)
	assert.Equal(t, "panel maintenance", payload[1].Content)
}

func TestFilterChunksAssignsSequentialOneBasedIds(t *testing.T) {
	scored := []*entity.ScoredDocumentChunk{
		scoredChunk("a", "x.txt", 0.9),
		scoredChunk("b", "x.txt", 0.1),
		scoredChunk("c", "x.txt", 0.5),
	}

	payload := filterChunks(scored, 0.3)

	require.Len(t, payload, 2)
	assert.Equal(t, 1, payload[0].ChunkId)
	assert.Equal(t, 2, payload[1].ChunkId, "ids number the surviving set, not the raw ranking")
}

func TestFilterChunksBoundaryScoreSurvives(t *testing.T) {
	payload := filterChunks([]*entity.ScoredDocumentChunk{
		scoredChunk("exactly at the floor", "edge.txt", 0.3),
	}, 0.3)

	require.Len(t, payload, 1)
}

func TestFilterChunksEmptySourceFallsBack(t *testing.T) {
	payload := filterChunks([]*entity.ScoredDocumentChunk{
		scoredChunk("orphan chunk", "", 0.7),
	}, 0.3)

	require.Len(t, payload, 1)
	assert.Equal(t, "Unknown document", payload[0].Source)
}

func TestFilterChunksAllBelowThreshold(t *testing.T) {
	payload := filterChunks([]*entity.ScoredDocumentChunk{
		scoredChunk("a", "x.txt", 0.1),
		scoredChunk("b", "x.txt", 0.2),
	}, 0.3)

	assert.Empty(t, payload)
}
