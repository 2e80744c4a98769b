package kafka

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Handler returns nil only when the message is fully processed and its
// offset may be committed.
type Handler func(ctx context.Context, m kafka.Message) error

const (
	retryInitial = 200 * time.Millisecond
	retryMax     = 10 * time.Second
)

type Consumer struct {
	r       *kafka.Reader
	workers int
	lanes   []int
	route   kafka.Hash
}

func NewConsumer(brokers []string, group string, topics []string, workers int) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		GroupTopics:    topics,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0,
	})
	if workers <= 0 {
		workers = 1
	}
	lanes := make([]int, workers)
	for i := range lanes {
		lanes[i] = i
	}
	return &Consumer{r: r, workers: workers, lanes: lanes}
}

// Lane picks the worker for m. Every message of one topic partition lands on
// the same worker, so offsets are handled and committed in order.
func (c *Consumer) Lane(m kafka.Message) int {
	key := m.Topic + "/" + strconv.Itoa(m.Partition)
	return c.route.Balance(kafka.Message{Key: []byte(key)}, c.lanes...)
}

// Start fetches messages and fans them out to the worker lanes until ctx is
// cancelled. A failing message is retried in place, holding back its
// partition, and committed only once the handler succeeds.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	jobs := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range jobs {
		jobs[i] = make(chan kafka.Message, 64)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if err := Retry(ctx, traced(h), m, retryInitial, retryMax); err != nil {
					continue
				}
				if err := c.r.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
					log.Printf("commit %s@%d/%d: %v", m.Topic, m.Partition, m.Offset, err)
				}
			}
		}(jobs[i])
	}
	defer wg.Wait()
	defer func() {
		for _, ch := range jobs {
			close(ch)
		}
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case jobs[c.Lane(m)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

// Retry runs h until it succeeds or ctx ends, doubling the pause between
// attempts up to max. It returns ctx's error when it gives up.
func Retry(ctx context.Context, h Handler, m kafka.Message, initial, max time.Duration) error {
	wait := initial
	for {
		err := h(ctx, m)
		if err == nil {
			return nil
		}
		log.Printf("handle %s@%d/%d: %v (retry in %s)", m.Topic, m.Partition, m.Offset, err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		if wait *= 2; wait > max {
			wait = max
		}
	}
}

func traced(h Handler) Handler {
	tracer := otel.Tracer("kafka-consumer")
	return func(ctx context.Context, m kafka.Message) error {
		ctx, span := tracer.Start(ctx, "consume "+m.Topic, trace.WithSpanKind(trace.SpanKindConsumer))
		defer span.End()
		span.SetAttributes(
			attribute.String("messaging.destination.name", m.Topic),
			attribute.Int("messaging.kafka.partition", m.Partition),
			attribute.Int64("messaging.kafka.offset", m.Offset),
		)
		err := h(ctx, m)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("handle failed: %v", err))
		}
		return err
	}
}
