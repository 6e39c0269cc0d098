package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/tarsit/tarsit-api/internal/models"
)

// TeamRepository answers team-membership permission lookups.
type TeamRepository struct {
	db *sqlx.DB
}

// NewTeamRepository constructs the repository.
func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

// HasPermission reports whether the user is an active member of the business holding the flag.
func (r *TeamRepository) HasPermission(ctx context.Context, businessID, userID string, permission models.TeamPermission) (bool, error) {
	column, ok := permission.Column()
	if !ok {
		return false, fmt.Errorf("unknown team permission %q", permission)
	}
	query := fmt.Sprintf(`SELECT EXISTS (
	SELECT 1 FROM team_members
	WHERE business_id = $1 AND user_id = $2 AND is_active = TRUE AND %s = TRUE
)`, column)
	var allowed bool
	if err := r.db.GetContext(ctx, &allowed, query, businessID, userID); err != nil {
		return false, fmt.Errorf("check team permission: %w", err)
	}
	return allowed, nil
}
