package audit

import (
	"context"

	"github.com/Shazidulislam/final-project-plant-server/internal/events"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Record(ctx context.Context, ev events.Envelope) error {
	payload := string(ev.Payload)
	if payload == "" {
		payload = "null"
	}
	_, err := r.DB.Exec(ctx, `
		INSERT INTO activity_log(event_id, event_type, correlation_id, producer, occurred_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6::jsonb)
		ON CONFLICT (event_id) DO NOTHING`,
		ev.EventID, ev.EventType, ev.CorrelationID, ev.Producer, ev.OccurredAt, payload)
	return err
}
