package events

import (
	"encoding/json"
	"time"
)

const (
	EventPlantAdded         = "PlantAdded"
	EventPlantStockAdjusted = "PlantStockAdjusted"
	EventOrderPlaced        = "OrderPlaced"
	EventOrderStatusChanged = "OrderStatusChanged"
	EventUserRoleChanged    = "UserRoleChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // document id
	Payload       json.RawMessage `json:"payload"`
}

// ---- payloads ----

type PlantAddedPayload struct {
	PlantID  string  `json:"plant_id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity float64 `json:"quantity"`
}

type PlantStockAdjustedPayload struct {
	PlantID string  `json:"plant_id"`
	Delta   float64 `json:"delta"`
	Matched bool    `json:"matched"`
}

type OrderPlacedPayload struct {
	OrderID       string  `json:"order_id"`
	PlantID       string  `json:"plant_id"`
	CustomerEmail string  `json:"customer_email"`
	SellerEmail   string  `json:"seller_email"`
	Quantity      float64 `json:"quantity"`
	Price         float64 `json:"price"`
}

type OrderStatusChangedPayload struct {
	OrderID  string `json:"order_id"`
	Status   string `json:"status"`
	Upserted bool   `json:"upserted,omitempty"`
}

type UserRoleChangedPayload struct {
	Email  string `json:"email"`
	Role   string `json:"role,omitempty"`
	Status string `json:"status"`
}
