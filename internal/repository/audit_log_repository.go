package repository

import (
	"context"

	"glemora/internal/domain/model"
)

type AuditLogFilter struct {
	Page         int
	Limit        int
	Action       string
	ResourceType string
	ActorUserID  *int64
}

type AuditLogRepository interface {
	Create(ctx context.Context, log model.AuditLog) error
	List(ctx context.Context, f AuditLogFilter) ([]model.AuditLog, error)
}
