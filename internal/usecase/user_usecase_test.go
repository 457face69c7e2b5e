package usecase

import (
	"context"
	"net/http"
	"testing"

	"glemora/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Test: ロール変更は監査ログを残す
func TestUpdateRolePromotes(t *testing.T) {
	users := new(userRepoMock)
	audit := new(auditRepoMock)

	users.On("FindByID", mock.Anything, int64(2)).Return(model.User{ID: 2, Username: "hanako", Role: model.RoleUser}, nil)
	users.On("UpdateRole", mock.Anything, int64(2), model.RoleAdmin).Return(nil)
	audit.On("Create", mock.Anything, mock.MatchedBy(func(l model.AuditLog) bool {
		return l.Action == model.AuditActionUpdateUserRole && l.ResourceID == 2 && l.ActorUserID == 9
	})).Return(nil)

	uc := NewUserUsecase(users, audit)

	out, err := uc.UpdateRole(context.Background(), 9, 2, UpdateRoleInput{Role: "ADMIN"})

	assert.NoError(t, err)
	assert.Equal(t, "ADMIN", out.Role)
	users.AssertExpectations(t)
	audit.AssertExpectations(t)
}

// Test: 自分自身の降格は拒否
func TestUpdateRoleSelfDemotion(t *testing.T) {
	uc := NewUserUsecase(new(userRepoMock), new(auditRepoMock))

	_, err := uc.UpdateRole(context.Background(), 9, 9, UpdateRoleInput{Role: "USER"})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}

// Test: 同じロールなら何もしない
func TestUpdateRoleNoop(t *testing.T) {
	users := new(userRepoMock)
	audit := new(auditRepoMock)

	users.On("FindByID", mock.Anything, int64(2)).Return(model.User{ID: 2, Role: model.RoleUser}, nil)

	uc := NewUserUsecase(users, audit)

	out, err := uc.UpdateRole(context.Background(), 9, 2, UpdateRoleInput{Role: "USER"})

	assert.NoError(t, err)
	assert.Equal(t, "USER", out.Role)
	users.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	audit.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Test: 自分自身は削除できない
func TestDeleteSelf(t *testing.T) {
	uc := NewUserUsecase(new(userRepoMock), new(auditRepoMock))

	err := uc.Delete(context.Background(), 9, 9)

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
}
