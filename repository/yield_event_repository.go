package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fortune/ledger-service/database"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/interfaces"
)

// YieldEventRepository implements the YieldEventRepository interface
type YieldEventRepository struct {
	q Queryable
}

// NewYieldEventRepository creates a new yield event repository
func NewYieldEventRepository(db *database.DB) *YieldEventRepository {
	return &YieldEventRepository{q: db.Pool}
}

func newYieldEventRepository(tx Queryable) interfaces.YieldEventRepository {
	return &YieldEventRepository{q: tx}
}

// Record appends an earnings event
func (r *YieldEventRepository) Record(ctx context.Context, event *entities.YieldEvent) error {
	query := `
		INSERT INTO yield_events (user_id, subkind, amount, source_user_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, occurred_at`

	err := r.q.QueryRow(ctx, query,
		event.UserID,
		event.Subkind,
		event.Amount,
		event.SourceUserID,
	).Scan(&event.ID, &event.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to record %s yield event for user %s: %w", event.Subkind, event.UserID, err)
	}
	return nil
}

// ListByUser returns a user's earnings events, newest first
func (r *YieldEventRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.YieldEvent, error) {
	query := `
		SELECT id, user_id, subkind, amount, source_user_id, occurred_at
		FROM yield_events
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list yield events for user %s: %w", userID, err)
	}
	defer rows.Close()

	var events []*entities.YieldEvent
	for rows.Next() {
		var e entities.YieldEvent
		if err := rows.Scan(&e.ID, &e.UserID, &e.Subkind, &e.Amount, &e.SourceUserID, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan yield event: %w", err)
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}

// SumByUserAndSubkind returns the lifetime total for one earnings subkind
func (r *YieldEventRepository) SumByUserAndSubkind(ctx context.Context, userID uuid.UUID, subkind entities.YieldSubkind) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM yield_events WHERE user_id = $1 AND subkind = $2`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, userID, subkind).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s events for user %s: %w", subkind, userID, err)
	}
	return total, nil
}

// SumBySubkindSince returns the system-wide total for a subkind since a time
func (r *YieldEventRepository) SumBySubkindSince(ctx context.Context, subkind entities.YieldSubkind, since time.Time) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM yield_events WHERE subkind = $1 AND occurred_at >= $2`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, subkind, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum %s events: %w", subkind, err)
	}
	return total, nil
}
