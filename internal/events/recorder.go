package events

import (
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"
)

// Recorder is an in-memory Sink for tests.
type Recorder struct {
	mu       sync.Mutex
	Messages []kafkago.Message
}

func (r *Recorder) Publish(topic string, key, value []byte, headers ...kafkago.Header) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Messages = append(r.Messages, kafkago.Message{Topic: topic, Key: key, Value: value, Headers: headers})
	return true
}

// Envelopes decodes every recorded message published to topic.
func (r *Recorder) Envelopes(topic string) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Envelope
	for _, m := range r.Messages {
		if m.Topic != topic {
			continue
		}
		var ev Envelope
		if err := json.Unmarshal(m.Value, &ev); err == nil {
			out = append(out, ev)
		}
	}
	return out
}
