package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/tarsit/tarsit-api/internal/models"
)

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// recordAudit writes an audit entry best-effort; failures are only logged.
func recordAudit(ctx context.Context, audit auditLogger, logger *zap.Logger, actor *models.JWTClaims, action, resource, resourceID string, oldValues, newValues interface{}) {
	if audit == nil {
		return
	}
	entry := &models.AuditLog{
		Action:   action,
		Resource: resource,
	}
	if actor != nil {
		userID := actor.Caller()
		entry.UserID = &userID
	}
	if resourceID != "" {
		entry.ResourceID = &resourceID
	}
	if oldValues != nil {
		entry.OldValues, _ = json.Marshal(oldValues)
	}
	if newValues != nil {
		entry.NewValues, _ = json.Marshal(newValues)
	}
	meta := models.RequestMetaFrom(ctx)
	entry.IPAddress = meta.IP
	entry.UserAgent = meta.UserAgent

	if err := audit.CreateAuditLog(ctx, entry); err != nil {
		logger.Warn("failed to record audit log", zap.String("action", action), zap.String("resource_id", resourceID), zap.Error(err))
	}
}
