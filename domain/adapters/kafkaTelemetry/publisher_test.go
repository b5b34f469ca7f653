package kafkaTelemetry_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wikiPathfinder/domain/adapters/kafkaTelemetry"
	"wikiPathfinder/domain/adapters/kafkaTelemetry/internal/mocks"
	"wikiPathfinder/domain/model"
)

func recordingWriter() *mocks.MessageWriterMock {
	return &mocks.MessageWriterMock{
		WriteMessagesFunc: func(ctx context.Context, msgs ...kafka.Message) error {
			return nil
		},
		CloseFunc: func() error {
			return nil
		},
	}
}

func decode(t *testing.T, writer *mocks.MessageWriterMock, call int) (kafka.Message, kafkaTelemetry.Event) {
	t.Helper()
	calls := writer.WriteMessagesCalls()
	require.Greater(t, len(calls), call)
	require.Len(t, calls[call].Msgs, 1)

	msg := calls[call].Msgs[0]
	var event kafkaTelemetry.Event
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	return msg, event
}

func TestPublisher(t *testing.T) {
	ctx := context.Background()

	t.Run("progress events are keyed by search id", func(t *testing.T) {
		writer := recordingWriter()
		p := kafkaTelemetry.NewPublisherWithWriter(writer, "search-1")

		require.NoError(t, p.Progress(ctx, model.Progress{Processed: 4, Queued: 9}))

		msg, event := decode(t, writer, 0)
		assert.Equal(t, "search-1", string(msg.Key))
		assert.Equal(t, "search-1", event.SearchID)
		assert.Equal(t, kafkaTelemetry.EventProgress, event.Kind)
		assert.Equal(t, uint64(4), event.Processed)
		assert.Equal(t, uint64(9), event.Queued)
		assert.Nil(t, event.Worker)
		assert.False(t, event.At.IsZero())
	})
	t.Run("worker death carries the worker index", func(t *testing.T) {
		writer := recordingWriter()
		p := kafkaTelemetry.NewPublisherWithWriter(writer, "search-1")

		require.NoError(t, p.WorkerDied(ctx, 0))

		_, event := decode(t, writer, 0)
		assert.Equal(t, kafkaTelemetry.EventWorkerDied, event.Kind)
		require.NotNil(t, event.Worker)
		assert.Equal(t, 0, *event.Worker)
	})
	t.Run("result carries the path", func(t *testing.T) {
		writer := recordingWriter()
		p := kafkaTelemetry.NewPublisherWithWriter(writer, "search-1")

		require.NoError(t, p.Result(ctx, model.SearchResult{Outcome: model.Found, Path: []string{"A", "B"}, Processed: 2}))
		require.NoError(t, p.Result(ctx, model.SearchResult{Outcome: model.Aborted, Reason: model.QueueOverflow}))

		_, found := decode(t, writer, 0)
		assert.Equal(t, "found", found.Outcome)
		assert.Equal(t, []string{"A", "B"}, found.Path)

		_, aborted := decode(t, writer, 1)
		assert.Equal(t, "aborted", aborted.Outcome)
		assert.Equal(t, "queue overflow", aborted.Reason)
	})
	t.Run("write errors are returned", func(t *testing.T) {
		writer := &mocks.MessageWriterMock{
			WriteMessagesFunc: func(ctx context.Context, msgs ...kafka.Message) error {
				return errors.New("write failed")
			},
		}
		p := kafkaTelemetry.NewPublisherWithWriter(writer, "search-1")

		assert.Error(t, p.Progress(ctx, model.Progress{}))
	})
	t.Run("new publishers get distinct search ids", func(t *testing.T) {
		a := kafkaTelemetry.NewPublisher("localhost:9092", "telemetry")
		b := kafkaTelemetry.NewPublisher("localhost:9092", "telemetry")

		assert.NotEmpty(t, a.SearchID())
		assert.NotEqual(t, a.SearchID(), b.SearchID())
	})
}
