package dto

type IngestDocumentRequest struct {
	Source  string `json:"source" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type IngestDocumentResponse struct {
	Source     string `json:"source"`
	ChunkCount int    `json:"chunk_count"`
}

type DocumentSourceResponse struct {
	Source     string `json:"source"`
	ChunkCount int64  `json:"chunk_count"`
}

type ListDocumentSourcesResponse struct {
	Sources []DocumentSourceResponse `json:"sources"`
}

// PublishEmbedChunkMessage is the payload handed to the embedding consumer
// for each freshly ingested chunk.
type PublishEmbedChunkMessage struct {
	ChunkId string `json:"chunk_id"`
}
