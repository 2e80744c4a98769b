package kafka

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer buffers messages in memory and writes them from one goroutine.
// Topics are set per message so one writer serves every stream.
type Producer struct {
	w         *kafka.Writer
	inbox     chan kafka.Message
	closeCh   chan struct{}
	closeOnce sync.Once

	mu     sync.RWMutex
	closed bool
}

func NewProducer(brokers []string, buf int) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
			Async:        true,
			Completion: func(msgs []kafka.Message, err error) {
				if err != nil {
					log.Printf("kafka write failed: %d messages: %v", len(msgs), err)
				}
			},
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				log.Printf("kafka write %s: %v", m.Topic, err)
			}
		}
		_ = p.w.Close()
	}()
}

// Publish enqueues without blocking; a full buffer or a closed producer
// drops the message.
func (p *Producer) Publish(topic string, key, value []byte, headers ...kafka.Header) bool {
	m := kafka.Message{
		Topic:   topic,
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		log.Printf("kafka producer closed, dropped message for %s", topic)
		return false
	}
	select {
	case p.inbox <- m:
		return true
	default:
		log.Printf("kafka inbox full, dropped message for %s", topic)
		return false
	}
}

// Close stops intake; the writer goroutine flushes what is buffered and exits.
func (p *Producer) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.inbox)
		p.mu.Unlock()
	})
}

func (p *Producer) WaitClosed() { <-p.closeCh }
