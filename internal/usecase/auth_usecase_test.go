package usecase

import (
	"context"
	"net/http"
	"testing"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// Test: 登録成功。パスワードは平文で保存されない
func TestRegisterSuccess(t *testing.T) {
	users := new(userRepoMock)

	users.On("FindByUsername", mock.Anything, "taro").Return(model.User{}, repo.ErrNotFound)
	users.On("FindByEmail", mock.Anything, "taro@example.com").Return(model.User{}, repo.ErrNotFound)
	users.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		if u.Username != "taro" || u.Email != "taro@example.com" || u.Role != model.RoleUser {
			return false
		}
		// bcryptハッシュが保存される
		return u.PasswordHash != "password123" &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("password123")) == nil
	})).Return(model.User{ID: 1, Username: "taro", Email: "taro@example.com", Role: model.RoleUser}, nil)

	uc := NewAuthUsecase(users, &issuerStub{token: "tok"})

	out, err := uc.Register(context.Background(), RegisterInput{
		Username: "taro",
		Email:    "taro@example.com",
		Password: "password123",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.ID)
	assert.Equal(t, "USER", out.Role)
	users.AssertExpectations(t)
}

// Test: username重複は409
func TestRegisterDuplicateUsername(t *testing.T) {
	users := new(userRepoMock)
	users.On("FindByUsername", mock.Anything, "taro").Return(model.User{ID: 1, Username: "taro"}, nil)

	uc := NewAuthUsecase(users, &issuerStub{token: "tok"})

	_, err := uc.Register(context.Background(), RegisterInput{
		Username: "taro",
		Email:    "other@example.com",
		Password: "password123",
	})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusConflict, he.Status)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// Test: 短すぎるパスワードは400
func TestRegisterShortPassword(t *testing.T) {
	uc := NewAuthUsecase(new(userRepoMock), &issuerStub{token: "tok"})

	_, err := uc.Register(context.Background(), RegisterInput{
		Username: "taro",
		Email:    "taro@example.com",
		Password: "short",
	})

	he, ok := AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Status)
}

// Test: ログイン成功でトークンが返る
func TestLoginSuccess(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	users := new(userRepoMock)
	users.On("FindByUsername", mock.Anything, "taro").Return(model.User{
		ID:           1,
		Username:     "taro",
		Email:        "taro@example.com",
		PasswordHash: string(hash),
		Role:         model.RoleUser,
	}, nil)

	uc := NewAuthUsecase(users, &issuerStub{token: "signed-token"})

	out, err := uc.Login(context.Background(), LoginInput{Username: "taro", Password: "password123"})

	assert.NoError(t, err)
	assert.Equal(t, "signed-token", out.Token)
	assert.Equal(t, "taro", out.User.Username)
}

// Test: パスワード誤りとユーザー不在は同じ401メッセージ
func TestLoginInvalidCredentials(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)

	users := new(userRepoMock)
	users.On("FindByUsername", mock.Anything, "taro").Return(model.User{ID: 1, Username: "taro", PasswordHash: string(hash)}, nil)
	users.On("FindByUsername", mock.Anything, "nobody").Return(model.User{}, repo.ErrNotFound)

	uc := NewAuthUsecase(users, &issuerStub{token: "tok"})

	_, err1 := uc.Login(context.Background(), LoginInput{Username: "taro", Password: "wrong"})
	_, err2 := uc.Login(context.Background(), LoginInput{Username: "nobody", Password: "password123"})

	he1, ok1 := AsHTTPError(err1)
	he2, ok2 := AsHTTPError(err2)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, http.StatusUnauthorized, he1.Status)
	assert.Equal(t, he1.Message, he2.Message)
}
