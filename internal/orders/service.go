package orders

import (
	"context"
	"fmt"

	"github.com/Shazidulislam/final-project-plant-server/internal/docstore"
	"github.com/Shazidulislam/final-project-plant-server/internal/events"
)

type Service struct {
	Orders docstore.Collection
	Users  docstore.Collection
	Plants docstore.Collection
	Events *events.Emitter
}

// Create stores the order as sent. The plant reference is not checked.
func (s *Service) Create(ctx context.Context, order docstore.Document) (docstore.InsertResult, error) {
	res, err := s.Orders.InsertOne(ctx, order)
	if err != nil {
		return res, fmt.Errorf("create order: %w", err)
	}
	qty, _ := order.Float("quantity")
	price, _ := order.Float("price")
	s.Events.Emit(ctx, events.TopicOrderPlaced, events.EventOrderPlaced, res.InsertedID, events.OrderPlacedPayload{
		OrderID:       res.InsertedID,
		PlantID:       order.String("plantId"),
		CustomerEmail: order.String("customer.email"),
		SellerEmail:   sellerEmail(order),
		Quantity:      qty,
		Price:         price,
	})
	return res, nil
}

func (s *Service) ListByCustomer(ctx context.Context, email string) ([]docstore.Document, error) {
	out, err := s.Orders.Find(ctx, docstore.Document{"customer": map[string]any{"email": email}})
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	return out, nil
}

func (s *Service) ListBySeller(ctx context.Context, email string) ([]docstore.Document, error) {
	out, err := s.Orders.Find(ctx, docstore.Document{"seller": map[string]any{"email": email}})
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	return out, nil
}

// UpdateStatus sets any status on an existing order.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (docstore.UpdateResult, error) {
	return s.setStatus(ctx, id, status, false)
}

// Cancel upserts: an unknown id creates a bare {_id, status} document.
func (s *Service) Cancel(ctx context.Context, id string) (docstore.UpdateResult, error) {
	return s.setStatus(ctx, id, StatusCancelled, true)
}

func (s *Service) setStatus(ctx context.Context, id string, status Status, upsert bool) (docstore.UpdateResult, error) {
	res, err := s.Orders.UpdateByID(ctx, id, docstore.Update{Set: docstore.Document{"status": string(status)}}, upsert)
	if err != nil {
		return res, fmt.Errorf("set order %s status: %w", id, err)
	}
	if res.MatchedCount > 0 || res.UpsertedCount > 0 {
		s.Events.Emit(ctx, events.TopicOrderStatusChanged, events.EventOrderStatusChanged, id, events.OrderStatusChangedPayload{
			OrderID:  id,
			Status:   string(status),
			Upserted: res.UpsertedCount > 0,
		})
	}
	return res, nil
}

// Stats counts users and plants and groups order revenue by creation day.
func (s *Service) Stats(ctx context.Context) (AdminStats, error) {
	users, err := s.Users.EstimatedCount(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("count users: %w", err)
	}
	plants, err := s.Plants.EstimatedCount(ctx)
	if err != nil {
		return AdminStats{}, fmt.Errorf("count plants: %w", err)
	}
	buckets, err := s.Orders.SumByDay(ctx, "price")
	if err != nil {
		return AdminStats{}, fmt.Errorf("revenue by day: %w", err)
	}
	days, revenue, count := Summarize(buckets)
	return AdminStats{
		TotalUsers:   users,
		TotalPlant:   plants,
		TotalRevenue: revenue,
		TotalOrder:   count,
		BarChatData:  days,
	}, nil
}

// sellerEmail reads seller.email, or seller itself when a legacy client sent
// a bare email string.
func sellerEmail(order docstore.Document) string {
	if s := order.String("seller"); s != "" {
		return s
	}
	return order.String("seller.email")
}
