package service

import (
	"context"
	"encoding/json"
	"log"

	"ai-assistant-be/internal/dto"
	"ai-assistant-be/internal/repository/specification"
	"ai-assistant-be/internal/repository/unitofwork"
	"ai-assistant-be/pkg/embedding"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService embeds ingested chunks asynchronously: ingestion writes
// chunks with a NULL embedding and publishes one message per chunk, this
// consumer fills the embedding column in. Un-embedded chunks are simply
// invisible to search until processed.
type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.Provider
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.Provider,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishEmbedChunkMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal embed message: %v", err)
		msg.Ack() // malformed messages would retry forever
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	chunk, err := uow.DocumentChunkRepository().FindOne(ctx, specification.ByStringID{ID: payload.ChunkId})
	if err != nil {
		log.Printf("[ERROR] Failed to load chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}
	if chunk == nil {
		// Source re-ingested or deleted between publish and consume.
		log.Printf("[WARN] Chunk not found, skipping: %s", payload.ChunkId)
		msg.Ack()
		return
	}

	vec, err := cs.embeddingProvider.Generate(ctx, chunk.Content)
	if err != nil {
		log.Printf("[ERROR] Failed to embed chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}

	if err := uow.DocumentChunkRepository().UpdateEmbedding(ctx, chunk.Id, vec); err != nil {
		log.Printf("[ERROR] Failed to store embedding for chunk %s: %v", payload.ChunkId, err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Embedded chunk %s (%d dims)", chunk.Id, len(vec))
	msg.Ack()
}
