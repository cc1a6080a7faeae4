package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fortune/ledger-service/database"
	"fortune/ledger-service/domain/entities"
	"fortune/ledger-service/domain/interfaces"
)

// ReferralRepository implements the ReferralRepository interface
type ReferralRepository struct {
	q Queryable
}

// NewReferralRepository creates a new referral repository
func NewReferralRepository(db *database.DB) *ReferralRepository {
	return &ReferralRepository{q: db.Pool}
}

func newReferralRepository(tx Queryable) interfaces.ReferralRepository {
	return &ReferralRepository{q: tx}
}

// CreateEdge records who invited a new user. The primary key on the child
// column guarantees at most one inviter per user.
func (r *ReferralRepository) CreateEdge(ctx context.Context, edge *entities.ReferralEdge) error {
	query := `
		INSERT INTO referral_edges (child_user_id, parent_user_id)
		VALUES ($1, $2)
		RETURNING created_at`

	err := r.q.QueryRow(ctx, query, edge.ChildUserID, edge.ParentUserID).Scan(&edge.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create referral edge %s -> %s: %w", edge.ChildUserID, edge.ParentUserID, err)
	}
	return nil
}

// GetParent returns the inviter of a user, or nil when the user has none
func (r *ReferralRepository) GetParent(ctx context.Context, childUserID uuid.UUID) (*uuid.UUID, error) {
	query := `SELECT parent_user_id FROM referral_edges WHERE child_user_id = $1`

	var parent uuid.UUID
	err := r.q.QueryRow(ctx, query, childUserID).Scan(&parent)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get parent of %s: %w", childUserID, err)
	}
	return &parent, nil
}

// GetUpline returns up to maxDepth ancestors, nearest first
func (r *ReferralRepository) GetUpline(ctx context.Context, childUserID uuid.UUID, maxDepth int) ([]uuid.UUID, error) {
	query := `
		WITH RECURSIVE upline AS (
			SELECT parent_user_id, 1 AS depth
			FROM referral_edges
			WHERE child_user_id = $1
			UNION ALL
			SELECT e.parent_user_id, u.depth + 1
			FROM referral_edges e
			JOIN upline u ON e.child_user_id = u.parent_user_id
			WHERE u.depth < $2
		)
		SELECT parent_user_id FROM upline ORDER BY depth`

	rows, err := r.q.Query(ctx, query, childUserID, maxDepth)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upline of %s: %w", childUserID, err)
	}
	defer rows.Close()

	var upline []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan upline row: %w", err)
		}
		upline = append(upline, id)
	}
	return upline, rows.Err()
}

// CountDownline returns the downline sizes for the first three levels
func (r *ReferralRepository) CountDownline(ctx context.Context, parentUserID uuid.UUID) (entities.ReferralCounts, error) {
	query := `
		WITH RECURSIVE downline AS (
			SELECT child_user_id, 1 AS depth
			FROM referral_edges
			WHERE parent_user_id = $1
			UNION ALL
			SELECT e.child_user_id, d.depth + 1
			FROM referral_edges e
			JOIN downline d ON e.parent_user_id = d.child_user_id
			WHERE d.depth < 3
		)
		SELECT
			COUNT(*) FILTER (WHERE depth = 1),
			COUNT(*) FILTER (WHERE depth = 2),
			COUNT(*) FILTER (WHERE depth = 3)
		FROM downline`

	var counts entities.ReferralCounts
	err := r.q.QueryRow(ctx, query, parentUserID).Scan(&counts.Level1, &counts.Level2, &counts.Level3)
	if err != nil {
		return entities.ReferralCounts{}, fmt.Errorf("failed to count downline of %s: %w", parentUserID, err)
	}
	return counts, nil
}

// ListDirectChildren returns a user's level 1 referrals
func (r *ReferralRepository) ListDirectChildren(ctx context.Context, parentUserID uuid.UUID) ([]uuid.UUID, error) {
	query := `SELECT child_user_id FROM referral_edges WHERE parent_user_id = $1 ORDER BY created_at`

	rows, err := r.q.Query(ctx, query, parentUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children of %s: %w", parentUserID, err)
	}
	defer rows.Close()

	var children []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child row: %w", err)
		}
		children = append(children, id)
	}
	return children, rows.Err()
}
