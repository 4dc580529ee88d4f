package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"assembly-rag-be/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher emits service events onto the bus.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects and makes sure the stream exists. Events are kept
// under LimitsPolicy so several consumers (cache invalidation, live trace
// relays) can each read the same message.
func NewPublisher(url string) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectRoot + ".>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		// NATS may not be ready yet or the stream may already exist with a
		// different config; publishing will surface real failures.
		log.Printf("Warn: Failed to ensure stream %q: %v", StreamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// Publish sends one event under the rag subject root.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	subject := fmt.Sprintf("%s.%s", SubjectRoot, event.EventType())
	if _, err := p.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("publish to %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
