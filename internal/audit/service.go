package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	kafkax "github.com/Shazidulislam/final-project-plant-server/internal/kafka"
	kafkago "github.com/segmentio/kafka-go"
)

// Deduper is satisfied by *redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, id string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type Recorder interface {
	Record(ctx context.Context, ev events.Envelope) error
}

type Service struct {
	Log   Recorder
	Dedup Deduper
}

// HandleEvent is installed as the consumer handler. Redeliveries of an
// event id already recorded are acknowledged without writing.
func (s *Service) HandleEvent(ctx context.Context, m kafkago.Message) error {
	var env events.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		log.Printf("audit: skip undecodable message %s@%d/%d: %v", m.Topic, m.Partition, m.Offset, err)
		return nil
	}
	if env.EventID == "" {
		log.Printf("audit: skip %s without event id", m.Topic)
		return nil
	}
	if err := checkPayload(env); err != nil {
		log.Printf("audit: skip %s %s: %v", env.EventType, env.EventID, err)
		return nil
	}

	first, err := s.Dedup.FirstSeen(ctx, env.EventID)
	if err != nil {
		// Redis down: the log's primary key still rejects duplicates.
		log.Printf("audit: dedup %s: %v", env.EventID, err)
		first = true
	}
	if !first {
		return nil
	}

	if err := s.Log.Record(ctx, env); err != nil {
		_ = s.Dedup.Forget(ctx, env.EventID)
		return fmt.Errorf("record %s %s: %w", env.EventType, env.EventID, err)
	}
	return nil
}

// checkPayload decodes the payload of known event types so malformed ones
// never reach the log. Unknown types pass through untouched.
func checkPayload(env events.Envelope) error {
	var err error
	switch env.EventType {
	case events.EventPlantAdded:
		_, err = kafkax.UnwrapPayload[events.PlantAddedPayload](env.Payload)
	case events.EventPlantStockAdjusted:
		_, err = kafkax.UnwrapPayload[events.PlantStockAdjustedPayload](env.Payload)
	case events.EventOrderPlaced:
		_, err = kafkax.UnwrapPayload[events.OrderPlacedPayload](env.Payload)
	case events.EventOrderStatusChanged:
		_, err = kafkax.UnwrapPayload[events.OrderStatusChangedPayload](env.Payload)
	case events.EventUserRoleChanged:
		_, err = kafkax.UnwrapPayload[events.UserRoleChangedPayload](env.Payload)
	}
	return err
}
