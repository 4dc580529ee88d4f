package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/specification"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/pkg/events"
	pktNats "assembly-rag-be/pkg/nats"

	"github.com/google/uuid"
)

type IMinutesService interface {
	CreateBulk(ctx context.Context, request *dto.CreateMinutesBulkRequest) (*dto.CreateMinutesBulkResponse, error)
	List(ctx context.Context, request *dto.ListMinutesRequest) (*dto.ListMinutesResponse, error)
	Stats(ctx context.Context) (*dto.MinuteStatsResponse, error)
	Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteMinutesResponse, error)
}

type minutesService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewMinutesService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
) IMinutesService {
	return &minutesService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

// CreateBulk persists a batch of minutes and queues one embedding job per
// row. Rows are committed before queueing, so a queue hiccup leaves minutes
// stored but unindexed rather than losing them.
func (ms *minutesService) CreateBulk(ctx context.Context, request *dto.CreateMinutesBulkRequest) (*dto.CreateMinutesBulkResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	minutes := make([]*entity.Minute, len(request.Minutes))
	for i, req := range request.Minutes {
		minutes[i] = &entity.Minute{
			Id:             uuid.New(),
			MinutesType:    req.MinutesType,
			MinutesDate:    req.MinutesDate,
			AssemblyNumber: req.AssemblyNumber,
			SessionNumber:  req.SessionNumber,
			SubSession:     req.SubSession,
			SpeechOrder:    req.SpeechOrder,
			Speaker:        req.Speaker,
			Position:       req.Position,
			Content:        req.Content,
			CreatedAt:      now,
		}
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MinuteRepository().CreateBulk(ctx, minutes); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(minutes))
	queued := 0
	for i, minute := range minutes {
		ids[i] = minute.Id

		msgPayload := dto.PublishEmbedMinuteMessage{MinuteId: minute.Id}
		msgJson, err := json.Marshal(msgPayload)
		if err != nil {
			fmt.Printf("[WARN] Failed to marshal embed job for minute %s: %v\n", minute.Id, err)
			continue
		}
		if err := ms.publisherService.Publish(ctx, msgJson); err != nil {
			fmt.Printf("[WARN] Failed to queue embed job for minute %s: %v\n", minute.Id, err)
			continue
		}
		queued++
	}

	return &dto.CreateMinutesBulkResponse{
		Ids:    ids,
		Queued: queued,
	}, nil
}

// List returns minutes in reading order: newest session first, speeches in
// the order they were given.
func (ms *minutesService) List(ctx context.Context, request *dto.ListMinutesRequest) (*dto.ListMinutesResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)

	var specs []specification.Specification
	if request.Speaker != "" {
		specs = append(specs, specification.BySpeaker{Speaker: request.Speaker})
	}
	if request.MinutesType != "" {
		specs = append(specs, specification.ByMinutesType{MinutesType: request.MinutesType})
	}
	if !request.From.IsZero() || !request.To.IsZero() {
		specs = append(specs, specification.ByDateRange{From: request.From, To: request.To})
	}

	minutes, err := uow.MinuteRepository().FindAllOrdered(ctx, request.Limit, request.Offset, specs...)
	if err != nil {
		return nil, err
	}
	total, err := uow.MinuteRepository().Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	dtos := make([]dto.MinuteDTO, len(minutes))
	for i, m := range minutes {
		dtos[i] = toMinuteDTO(m)
	}

	return &dto.ListMinutesResponse{
		Minutes: dtos,
		Total:   total,
	}, nil
}

func (ms *minutesService) Stats(ctx context.Context) (*dto.MinuteStatsResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)

	minutes, err := uow.MinuteRepository().Count(ctx)
	if err != nil {
		return nil, err
	}
	embeddings, err := uow.MinuteEmbeddingRepository().Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.MinuteStatsResponse{
		Minutes:    minutes,
		Embeddings: embeddings,
	}, nil
}

// Delete soft-deletes a minute and hard-deletes its embeddings so search
// never surfaces a speech that no longer exists. Deleting a missing minute
// is a no-op.
func (ms *minutesService) Delete(ctx context.Context, id uuid.UUID) (*dto.DeleteMinutesResponse, error) {
	uow := ms.uowFactory.NewUnitOfWork(ctx)

	minute, err := uow.MinuteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if minute == nil {
		return &dto.DeleteMinutesResponse{Deleted: 0}, nil
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.MinuteEmbeddingRepository().DeleteByMinuteIdUnscoped(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.MinuteRepository().Delete(ctx, id); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// The corpus changed, so cached answers built on it must go.
	if ms.eventPublisher != nil {
		evt := events.New(events.EventMinutesIndexed, map[string]interface{}{
			"minute_id": id,
			"deleted":   true,
		})
		if err := ms.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.EventMinutesIndexed, err)
		}
	}

	return &dto.DeleteMinutesResponse{Deleted: 1}, nil
}

func toMinuteDTO(m *entity.Minute) dto.MinuteDTO {
	return dto.MinuteDTO{
		Id:             m.Id,
		MinutesType:    m.MinutesType,
		MinutesDate:    m.MinutesDate,
		AssemblyNumber: m.AssemblyNumber,
		SessionNumber:  m.SessionNumber,
		SubSession:     m.SubSession,
		SpeechOrder:    m.SpeechOrder,
		Speaker:        m.Speaker,
		Position:       m.Position,
		Content:        m.Content,
		CreatedAt:      m.CreatedAt,
	}
}
