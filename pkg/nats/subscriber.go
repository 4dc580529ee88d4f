package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"assembly-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one decoded event. Returning an error naks the
// message for redelivery.
type EventHandler func(ctx context.Context, event events.Event) error

// Subscriber consumes events from the bus. It dials its own connection so a
// consumer outage never blocks the publishing path.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(url string) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a handler for a subject pattern under the rag root.
// A durable consumer with explicit acks keeps delivery at-least-once, so
// handlers must tolerate replays.
func (s *Subscriber) Subscribe(subject string, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(context.Background(), StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: subject,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("create durable consumer %s: %w", durableName, err)
	}

	if _, err := consumer.Consume(func(msg jetstream.Msg) { s.dispatch(msg, handler) }); err != nil {
		return fmt.Errorf("start consuming %s: %w", subject, err)
	}

	log.Printf("Subscribed to %s with durable %s", subject, durableName)
	return nil
}

// dispatch decodes one message and routes it through the handler. Handlers
// see the bare event type, without the subject root.
func (s *Subscriber) dispatch(msg jetstream.Msg, handler EventHandler) {
	var payload map[string]interface{}
	if err := json.Unmarshal(msg.Data(), &payload); err != nil {
		log.Printf("Error unmarshalling event data: %v", err)
		msg.Nak()
		return
	}

	event := events.New(strings.TrimPrefix(msg.Subject(), SubjectRoot+"."), payload)

	if err := handler(context.Background(), event); err != nil {
		log.Printf("Handler failed for event %s: %v", msg.Subject(), err)
		msg.Nak()
		return
	}

	msg.Ack()
}

func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
