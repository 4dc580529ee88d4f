package nats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	// StreamName holds every event this service emits.
	StreamName = "RAG_EVENTS"

	// SubjectRoot prefixes event types, so the stream captures "rag.>".
	SubjectRoot = "rag"
)

// connect dials NATS and opens a JetStream context over the connection.
// Reconnects are bounded: after the retry budget the broker is treated as
// down and callers degrade rather than block.
func connect(url string) (*nats.Conn, jetstream.JetStream, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("open JetStream context: %w", err)
	}
	return nc, js, nil
}
