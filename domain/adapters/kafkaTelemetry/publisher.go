//go:generate moq -out internal/mocks/message_writer_moq.go -pkg mocks . MessageWriter

package kafkaTelemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"wikiPathfinder/domain/model"
)

// MessageWriter abstracts kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type EventKind string

const (
	EventProgress   EventKind = "progress"
	EventWorkerDied EventKind = "worker_died"
	EventResult     EventKind = "result"
)

// Event is the payload written to the telemetry topic.
type Event struct {
	SearchID  string    `json:"search_id"`
	Kind      EventKind `json:"kind"`
	Processed uint64    `json:"processed"`
	Queued    uint64    `json:"queued"`
	Worker    *int      `json:"worker,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Path      []string  `json:"path,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher mirrors the telemetry of one search to a Kafka topic, keyed by search id.
type Publisher struct {
	writer   MessageWriter
	searchID string
}

// NewPublisher creates a Kafka publisher for the given broker and topic.
func NewPublisher(broker, topic string) *Publisher {
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	}, uuid.NewString())
}

// NewPublisherWithWriter builds a publisher using a custom writer (tests).
func NewPublisherWithWriter(writer MessageWriter, searchID string) *Publisher {
	return &Publisher{writer: writer, searchID: searchID}
}

func (p *Publisher) SearchID() string {
	return p.searchID
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

func (p *Publisher) Progress(ctx context.Context, progress model.Progress) error {
	return p.write(ctx, Event{
		Kind:      EventProgress,
		Processed: progress.Processed,
		Queued:    progress.Queued,
	})
}

func (p *Publisher) WorkerDied(ctx context.Context, worker int) error {
	return p.write(ctx, Event{
		Kind:   EventWorkerDied,
		Worker: &worker,
	})
}

func (p *Publisher) Result(ctx context.Context, res model.SearchResult) error {
	return p.write(ctx, Event{
		Kind:      EventResult,
		Processed: res.Processed,
		Outcome:   res.Outcome.String(),
		Reason:    res.Reason.String(),
		Path:      res.Path,
	})
}

func (p *Publisher) write(ctx context.Context, event Event) error {
	event.SearchID = p.searchID
	event.At = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(p.searchID),
		Value: payload,
		Time:  event.At,
	})
}
