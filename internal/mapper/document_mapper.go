package mapper

import (
	"encoding/json"
	"time"

	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(c *model.DocumentChunk) *entity.DocumentChunk {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if c.Embedding != nil {
		embedding = c.Embedding.Slice()
	}

	var metadata map[string]interface{}
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &metadata)
	}

	return &entity.DocumentChunk{
		Id:          c.Id,
		Content:     c.Content,
		SourceFile:  c.SourceFile,
		ChunkIndex:  c.ChunkIndex,
		TotalChunks: c.TotalChunks,
		Embedding:   embedding,
		Metadata:    metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *DocumentMapper) ToModel(c *entity.DocumentChunk) *model.DocumentChunk {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	var embedding *pgvector.Vector
	if c.Embedding != nil {
		v := pgvector.NewVector(c.Embedding)
		embedding = &v
	}

	var metadata datatypes.JSON
	if c.Metadata != nil {
		if b, err := json.Marshal(c.Metadata); err == nil {
			metadata = datatypes.JSON(b)
		}
	}

	return &model.DocumentChunk{
		Id:          c.Id,
		Content:     c.Content,
		SourceFile:  c.SourceFile,
		ChunkIndex:  c.ChunkIndex,
		TotalChunks: c.TotalChunks,
		Embedding:   embedding,
		Metadata:    metadata,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}
