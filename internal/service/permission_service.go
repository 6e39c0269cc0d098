package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
)

type businessReader interface {
	FindByID(ctx context.Context, id string) (*models.Business, error)
}

type teamPermissionReader interface {
	HasPermission(ctx context.Context, businessID, userID string, permission models.TeamPermission) (bool, error)
}

// PermissionService answers whether a user may act on a business: owners may do everything,
// team members only what their active membership flags grant.
type PermissionService struct {
	businesses businessReader
	team       teamPermissionReader
	logger     *zap.Logger
}

// NewPermissionService constructs the permission checker.
func NewPermissionService(businesses businessReader, team teamPermissionReader, logger *zap.Logger) *PermissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PermissionService{businesses: businesses, team: team, logger: logger}
}

// HasPermission loads the business and checks the user against it.
func (s *PermissionService) HasPermission(ctx context.Context, userID, businessID string, permissions ...models.TeamPermission) (bool, error) {
	business, err := s.businesses.FindByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "business not found")
		}
		return false, appErrors.Internal(err, "failed to load business")
	}
	return s.Allowed(ctx, userID, business, permissions...)
}

// Allowed checks the user against an already loaded business. Any one of permissions suffices.
func (s *PermissionService) Allowed(ctx context.Context, userID string, business *models.Business, permissions ...models.TeamPermission) (bool, error) {
	if userID == "" || business == nil {
		return false, nil
	}
	if business.OwnerID == userID {
		return true, nil
	}
	for _, permission := range permissions {
		ok, err := s.team.HasPermission(ctx, business.ID, userID, permission)
		if err != nil {
			return false, appErrors.Internal(err, "failed to check team permission")
		}
		if ok {
			return true, nil
		}
	}
	s.logger.Debug("permission denied",
		zap.String("user_id", userID),
		zap.String("business_id", business.ID),
		zap.Any("permissions", permissions),
	)
	return false, nil
}

// Require is Allowed turned into a forbidden error.
func (s *PermissionService) Require(ctx context.Context, userID string, business *models.Business, permissions ...models.TeamPermission) error {
	ok, err := s.Allowed(ctx, userID, business, permissions...)
	if err != nil {
		return err
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to manage this business")
	}
	return nil
}
