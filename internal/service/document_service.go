package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/entity"
	"ai-assistant-be/internal/pkg/logger"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/events"
	pktNats "ai-assistant-be/pkg/nats"
	"ai-assistant-be/pkg/utils"
)

type IDocumentService interface {
	Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error)
	ListSources(ctx context.Context) (*dto.ListDocumentSourcesResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	sysLogger        logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	sysLogger logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		sysLogger:        sysLogger,
	}
}

// Chunk sizing: ~2048 chars per chunk with 200 chars of overlap keeps each
// chunk comfortably inside the embedding model's window.
const (
	ingestChunkSize    = 2048
	ingestChunkOverlap = 200
)

// Ingest replaces all chunks of a source atomically, then hands each chunk
// to the async embedding pipeline. Re-ingesting a source is therefore an
// idempotent overwrite.
func (s *documentService) Ingest(ctx context.Context, req *dto.IngestDocumentRequest) (*dto.IngestDocumentResponse, error) {
	pieces := utils.SplitText(req.Content, ingestChunkSize, ingestChunkOverlap)
	stem := sourceStem(req.Source)

	now := time.Now()
	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		chunks = append(chunks, &entity.DocumentChunk{
			Id:          fmt.Sprintf("%s_chunk_%04d", stem, i),
			Content:     piece,
			SourceFile:  req.Source,
			ChunkIndex:  i,
			TotalChunks: len(pieces),
			Metadata: map[string]interface{}{
				"source_file":  req.Source,
				"chunk_index":  i,
				"total_chunks": len(pieces),
				// ~4 chars per token is close enough for capacity planning
				"token_estimate": len(piece) / 4,
				"processed_at":   now.Format(time.RFC3339),
			},
			CreatedAt: now,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	replaced, err := uow.DocumentChunkRepository().Count(ctx, specification.BySourceFile{SourceFile: req.Source})
	if err != nil {
		return nil, err
	}
	if replaced > 0 {
		s.sysLogger.Info("DOCUMENT", "Replacing existing chunks for source", map[string]interface{}{
			"source":          req.Source,
			"replaced_chunks": replaced,
		})
	}

	if err := uow.DocumentChunkRepository().DeleteBySourceFile(ctx, req.Source); err != nil {
		return nil, err
	}
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, chunks); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		payload, err := json.Marshal(dto.PublishEmbedChunkMessage{ChunkId: chunk.Id})
		if err != nil {
			return nil, err
		}
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			return nil, err
		}
	}

	s.sysLogger.Info("DOCUMENT", "Source ingested", map[string]interface{}{
		"source":      req.Source,
		"chunk_count": len(chunks),
	})

	if s.eventPublisher != nil {
		evt := events.NewDocumentIngested(req.Source, len(chunks))
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.sysLogger.Warn("DOCUMENT", "Failed to publish DOCUMENT_INGESTED event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &dto.IngestDocumentResponse{
		Source:     req.Source,
		ChunkCount: len(chunks),
	}, nil
}

func (s *documentService) ListSources(ctx context.Context) (*dto.ListDocumentSourcesResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	summaries, err := uow.DocumentChunkRepository().ListSources(ctx)
	if err != nil {
		return nil, err
	}

	sources := make([]dto.DocumentSourceResponse, 0, len(summaries))
	for _, summary := range summaries {
		sources = append(sources, dto.DocumentSourceResponse{
			Source:     summary.SourceFile,
			ChunkCount: summary.ChunkCount,
		})
	}

	return &dto.ListDocumentSourcesResponse{Sources: sources}, nil
}

// sourceStem strips the extension so chunk ids stay readable
// ("guide.txt" -> "guide_chunk_0000").
func sourceStem(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
