package service

import (
	"context"
	"fmt"

	"assembly-rag-be/internal/pkg/logger"
	"assembly-rag-be/pkg/events"
	pktNats "assembly-rag-be/pkg/nats" // Renamed to avoid collision
)

// IndexNotifier pushes index notifications to connected watchers.
// Typically implemented by the WebSocket Hub.
type IndexNotifier interface {
	Broadcast(messageType string, data interface{})
}

// EventService consumes bus events and keeps derived state in sync:
// cached answers are flushed when the corpus changes, and live trace
// watchers get told that fresher minutes are available.
type EventService struct {
	cache      AnswerCache
	subscriber *pktNats.Subscriber
	notifier   IndexNotifier
	logger     logger.ILogger
}

func NewEventService(cache AnswerCache, sub *pktNats.Subscriber, notifier IndexNotifier, log logger.ILogger) *EventService {
	return &EventService{
		cache:      cache,
		subscriber: sub,
		notifier:   notifier,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *EventService) Start() {
	subject := fmt.Sprintf("%s.%s", pktNats.SubjectRoot, events.EventMinutesIndexed)
	err := s.subscriber.Subscribe(subject, "rag-cache-invalidator", s.handleEvent)
	if err != nil {
		s.logger.Error("EventService", "Failed to start event subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("EventService", "Event service started", map[string]interface{}{"subject": subject})
}

func (s *EventService) handleEvent(ctx context.Context, event events.Event) error {
	if event.EventType() != events.EventMinutesIndexed {
		return nil
	}

	stale := s.cache.Len()
	s.cache.Flush()
	s.logger.Info("EventService", "Answer cache flushed after index update", map[string]interface{}{
		"evicted": stale,
		"payload": event.Payload(),
	})

	if s.notifier != nil {
		s.notifier.Broadcast("minutes_indexed", event.Payload())
	}
	return nil
}
