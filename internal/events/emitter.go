package events

import (
	"context"
	"strconv"
	"time"

	kafkax "github.com/Shazidulislam/final-project-plant-server/internal/kafka"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/trace"
)

// Sink is satisfied by *kafka.Producer.
type Sink interface {
	Publish(topic string, key, value []byte, headers ...kafkago.Header) bool
}

// Emitter wraps payloads in a versioned Envelope. A nil Emitter drops
// everything, so services work without a broker.
type Emitter struct {
	Sink    Sink
	Service string
	Now     func() time.Time
}

func NewEmitter(sink Sink, service string) *Emitter {
	return &Emitter{Sink: sink, Service: service, Now: time.Now}
}

func (e *Emitter) Emit(ctx context.Context, topic, eventType, correlationID string, payload any) {
	if e == nil || e.Sink == nil {
		return
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	ev := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    now().UTC(),
		Producer:      e.Service,
		CorrelationID: correlationID,
		Payload:       kafkax.MustMarshal(payload),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		ev.TraceID = sc.TraceID().String()
	}
	e.Sink.Publish(topic, PartitionKey(correlationID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte(strconv.Itoa(ev.EventVersion))},
	)
}
