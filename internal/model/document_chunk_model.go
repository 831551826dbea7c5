package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentChunk is one retrieval unit of an ingested document. The primary
// key follows the "<source-stem>_chunk_<index %04d>" convention so re-ingesting
// a source overwrites its chunks instead of duplicating them.
type DocumentChunk struct {
	Id          string          `gorm:"type:varchar(255);primaryKey"`
	Content     string          `gorm:"type:text;not null"`
	SourceFile  string          `gorm:"type:varchar(255);not null;index"`
	ChunkIndex  int             `gorm:"default:0"`
	TotalChunks int             `gorm:"default:0"`
	// text-embedding-3-large produces 3072 dimensions. Null until the
	// embedding consumer has processed the chunk.
	Embedding *pgvector.Vector `gorm:"type:vector(3072)"`
	Metadata  datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
	UpdatedAt time.Time        `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt   `gorm:"index"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
