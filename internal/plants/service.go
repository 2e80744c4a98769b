package plants

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
)

var ErrNotFound = errors.New("plant not found")

// Direction of a stock adjustment.
type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// Delta is the signed quantity change: decrease negates amount, anything
// else adds it.
func (d Direction) Delta(amount float64) float64 {
	if d == Decrease {
		return -amount
	}
	return amount
}

type Service struct {
	Plants docstore.Collection
	Events *events.Emitter
}

// Add stores the plant document as sent.
func (s *Service) Add(ctx context.Context, plant docstore.Document) (docstore.InsertResult, error) {
	res, err := s.Plants.InsertOne(ctx, plant)
	if err != nil {
		return res, fmt.Errorf("add plant: %w", err)
	}
	price, _ := plant.Float("price")
	qty, _ := plant.Float("quantity")
	s.Events.Emit(ctx, events.TopicPlantAdded, events.EventPlantAdded, res.InsertedID, events.PlantAddedPayload{
		PlantID:  res.InsertedID,
		Name:     plant.String("name"),
		Price:    price,
		Quantity: qty,
	})
	return res, nil
}

func (s *Service) List(ctx context.Context) ([]docstore.Document, error) {
	out, err := s.Plants.Find(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("list plants: %w", err)
	}
	return out, nil
}

// Get returns ErrNotFound for a well-formed id with no plant behind it.
func (s *Service) Get(ctx context.Context, id string) (docstore.Document, error) {
	p, err := s.Plants.FindByID(ctx, id)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get plant %s: %w", id, err)
	}
	return p, nil
}

// AdjustQuantity applies a signed increment to quantity. There is no floor
// and no existence check: a missing plant yields matchedCount 0.
func (s *Service) AdjustQuantity(ctx context.Context, id string, amount float64, dir Direction) (docstore.UpdateResult, error) {
	delta := dir.Delta(amount)
	res, err := s.Plants.UpdateByID(ctx, id, docstore.Update{Inc: map[string]float64{"quantity": delta}}, false)
	if err != nil {
		return res, fmt.Errorf("adjust plant %s quantity: %w", id, err)
	}
	s.Events.Emit(ctx, events.TopicPlantStockAdjusted, events.EventPlantStockAdjusted, id, events.PlantStockAdjustedPayload{
		PlantID: id,
		Delta:   delta,
		Matched: res.MatchedCount > 0,
	})
	return res, nil
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	n, err := s.Plants.EstimatedCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("count plants: %w", err)
	}
	return n, nil
}
