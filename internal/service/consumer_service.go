package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/specification"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/events"
	pktNats "assembly-rag-be/pkg/nats"
	"assembly-rag-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Chunking guards against pathologically long speeches; a typical speech
// summary fits a single chunk.
const (
	chunkSize    = 1200
	chunkOverlap = 150
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	eventPublisher    *pktNats.Publisher
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	eventPublisher *pktNats.Publisher,
) IConsumerService {
	return &consumerService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		eventPublisher:    eventPublisher,
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
	var payload dto.PublishEmbedMinuteMessage
	err := json.Unmarshal(msg.Payload, &payload)
	if err != nil {
		log.Printf("[ERROR] Failed to unmarshal message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing minute embedding for MinuteId: %s", payload.MinuteId)

	uow := cs.uowFactory.NewUnitOfWork(ctx)

	minute, err := uow.MinuteRepository().FindOne(ctx, specification.ByID{ID: payload.MinuteId})
	if err != nil {
		log.Printf("[ERROR] Failed to get minute %s: %v", payload.MinuteId, err)
		msg.Nack() // Nack for retriable errors
		return
	}
	if minute == nil {
		log.Printf("[ERROR] Minute not found: %s", payload.MinuteId)
		msg.Ack() // Minute deleted? Ack.
		return
	}

	newEmbeddings, err := BuildEmbeddings(ctx, cs.embeddingProvider, minute)
	if err != nil {
		log.Printf("[ERROR] Failed to build embeddings for minute %s: %v", payload.MinuteId, err)
		msg.Nack()
		return
	}

	if err := uow.Begin(ctx); err != nil {
		log.Printf("[ERROR] Failed to begin transaction: %v", err)
		msg.Nack()
		return
	}
	defer uow.Rollback()

	log.Printf("[INFO] Deleting old embeddings for minute %s", payload.MinuteId)
	if err := uow.MinuteEmbeddingRepository().DeleteByMinuteIdUnscoped(ctx, minute.Id); err != nil {
		log.Printf("[ERROR] Failed to delete old embeddings: %v", err)
		msg.Nack()
		return
	}

	log.Printf("[INFO] Creating %d new embeddings for minute %s", len(newEmbeddings), payload.MinuteId)
	if len(newEmbeddings) > 0 {
		if err := uow.MinuteEmbeddingRepository().CreateBulk(ctx, newEmbeddings); err != nil {
			log.Printf("[ERROR] Failed to create bulk embeddings: %v", err)
			msg.Nack()
			return
		}
	}

	if err := uow.Commit(); err != nil {
		log.Printf("[ERROR] Failed to commit transaction: %v", err)
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.New(events.EventMinutesIndexed, map[string]interface{}{
			"minute_id": minute.Id,
			"chunks":    len(newEmbeddings),
		})
		// We log error but don't fail the message as the event is auxiliary
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			log.Printf("[WARN] Failed to publish %s event: %v", events.EventMinutesIndexed, err)
		}
	}

	log.Printf("[SUCCESS] Minute indexed: %d chunks for MinuteId: %s", len(newEmbeddings), payload.MinuteId)
	msg.Ack()
}

// BuildEmbeddings chunks a minute's contextual text and embeds every chunk
// with the document task type. Shared by the background consumer and the
// indexer CLI so offline and online ingestion produce identical rows.
func BuildEmbeddings(ctx context.Context, provider embedding.EmbeddingProvider, minute *entity.Minute) ([]*entity.MinuteEmbedding, error) {
	content := ContextualText(minute)
	chunks := utils.SplitText(content, chunkSize, chunkOverlap)

	metadata, err := json.Marshal(map[string]interface{}{
		"minutes_type":    minute.MinutesType,
		"minutes_date":    minute.MinutesDate.Format(time.RFC3339),
		"assembly_number": minute.AssemblyNumber,
		"session_number":  minute.SessionNumber,
		"speaker":         minute.Speaker,
		"position":        minute.Position,
		"speech_order":    minute.SpeechOrder,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	embeddings := make([]*entity.MinuteEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := provider.Generate(ctx, chunk, embedding.TaskDocument)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}

		embeddings = append(embeddings, &entity.MinuteEmbedding{
			Id:             uuid.New(),
			Document:       chunk,
			EmbeddingValue: res.Embedding.Values,
			MinuteId:       minute.Id,
			ChunkIndex:     i,
			Metadata:       metadata,
			CreatedAt:      time.Now(),
		})
	}

	return embeddings, nil
}

// ContextualText renders the document a minute is embedded as: a one-line
// session header so retrieval can match on who spoke when, then the speech
// summary itself.
func ContextualText(minute *entity.Minute) string {
	contextParts := []string{
		strings.TrimSpace(fmt.Sprintf("%s %s %s", minute.AssemblyNumber, minute.SessionNumber, minute.SubSession)),
		minute.MinutesDate.Format("2006년 01월 02일"),
		fmt.Sprintf("회의유형: %s", minute.MinutesType),
	}
	if minute.Speaker != "" {
		speakerContext := fmt.Sprintf("발언자: %s", minute.Speaker)
		if minute.Position != "" {
			speakerContext += fmt.Sprintf(" (%s)", minute.Position)
		}
		contextParts = append(contextParts, speakerContext)
	}
	if minute.SpeechOrder > 0 {
		contextParts = append(contextParts, fmt.Sprintf("발언순서: %d", minute.SpeechOrder))
	}

	return fmt.Sprintf("%s\n\n발언내용: %s", strings.Join(contextParts, " | "), minute.Content)
}
