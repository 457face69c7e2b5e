package usecase

import (
	"context"
	"encoding/json"
	"net/http"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"
)

type UserUsecase struct {
	userRepo  repo.UserRepository
	auditRepo repo.AuditLogRepository
}

func NewUserUsecase(userRepo repo.UserRepository, auditRepo repo.AuditLogRepository) *UserUsecase {
	return &UserUsecase{userRepo: userRepo, auditRepo: auditRepo}
}

// Me は自分のプロフィール取得。
func (u *UserUsecase) Me(ctx context.Context, userID int64) (UserDTO, error) {
	if userID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err == repo.ErrNotFound {
		return UserDTO{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return toUserDTO(user), nil
}

// List は全ユーザー一覧（管理者）。
func (u *UserUsecase) List(ctx context.Context) ([]UserDTO, error) {
	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	dtos := make([]UserDTO, 0, len(users))
	for _, usr := range users {
		dtos = append(dtos, toUserDTO(usr))
	}
	return dtos, nil
}

type UpdateRoleInput struct {
	Role string `json:"role"`
}

// UpdateRole はロール変更（管理者）。自分自身の降格は拒否する
func (u *UserUsecase) UpdateRole(ctx context.Context, adminUserID int64, targetUserID int64, in UpdateRoleInput) (UserDTO, error) {
	if targetUserID <= 0 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	role := model.Role(in.Role)
	if role != model.RoleUser && role != model.RoleAdmin {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid role")
	}

	if targetUserID == adminUserID && role != model.RoleAdmin {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "cannot demote yourself")
	}

	target, err := u.userRepo.FindByID(ctx, targetUserID)
	if err == repo.ErrNotFound {
		return UserDTO{}, NewHTTPError(http.StatusNotFound, "user not found")
	}
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if target.Role == role {
		return toUserDTO(target), nil
	}

	if err := u.userRepo.UpdateRole(ctx, targetUserID, role); err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	beforeJSON, _ := json.Marshal(map[string]string{"role": string(target.Role)})
	afterJSON, _ := json.Marshal(map[string]string{"role": string(role)})
	_ = u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		Action:       model.AuditActionUpdateUserRole,
		ResourceType: model.AuditResourceUser,
		ResourceID:   targetUserID,
		BeforeJSON:   string(beforeJSON),
		AfterJSON:    string(afterJSON),
	})

	target.Role = role
	return toUserDTO(target), nil
}

// Delete はユーザー削除（管理者）。自分自身は削除不可
func (u *UserUsecase) Delete(ctx context.Context, adminUserID int64, targetUserID int64) error {
	if targetUserID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if targetUserID == adminUserID {
		return NewHTTPError(http.StatusConflict, "cannot delete yourself")
	}

	if _, err := u.userRepo.FindByID(ctx, targetUserID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "user not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.userRepo.Delete(ctx, targetUserID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
