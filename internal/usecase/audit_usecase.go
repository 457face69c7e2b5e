package usecase

import (
	"context"
	"net/http"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"
)

// 管理者操作ログの閲覧
type AuditUsecase struct {
	auditRepo repo.AuditLogRepository
}

func NewAuditUsecase(auditRepo repo.AuditLogRepository) *AuditUsecase {
	return &AuditUsecase{auditRepo: auditRepo}
}

func (u *AuditUsecase) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}

	logs, err := u.auditRepo.List(ctx, f)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
