package payment

import (
	"context"
	"errors"
	"fmt"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
)

var (
	ErrProcessor = errors.New("payment processor failure")
	ErrUnpriced  = errors.New("plant has no numeric price")
)

// Processor creates a payment intent and returns its client secret.
type Processor interface {
	CreateIntent(ctx context.Context, amount int64, currency string) (string, error)
}

// PlantFinder is satisfied by *plants.Service.
type PlantFinder interface {
	Get(ctx context.Context, id string) (docstore.Document, error)
}

type Bridge struct {
	Plants    PlantFinder
	Processor Processor
	Currency  string
}

// CreateIntent prices quantity units of the plant and asks the processor for
// an intent. Stock is not checked. The processor is never called when the
// plant lookup fails.
func (b *Bridge) CreateIntent(ctx context.Context, plantID string, quantity int64) (string, error) {
	plant, err := b.Plants.Get(ctx, plantID)
	if err != nil {
		return "", err
	}
	price, ok := plant.Float("price")
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnpriced, plantID)
	}
	amount := MinorUnits(price, quantity)
	secret, err := b.Processor.CreateIntent(ctx, amount, b.Currency)
	if err != nil {
		return "", fmt.Errorf("create intent for %d %s: %w", amount, b.Currency, err)
	}
	return secret, nil
}
