package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"glemora/internal/domain/model"
	repo "glemora/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// JWTを発行する約束
type TokenIssuer interface {
	Issue(userID int64, username string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type AuthUsecase struct {
	userRepo repo.UserRepository
	issuer   TokenIssuer
}

func NewAuthUsecase(userRepo repo.UserRepository, issuer TokenIssuer) *AuthUsecase {
	return &AuthUsecase{userRepo: userRepo, issuer: issuer}
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginOutput struct {
	User      UserDTO   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toUserDTO(u model.User) UserDTO {
	return UserDTO{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Role:     string(u.Role),
	}
}

// Register はユーザー登録。パスワードは必ずハッシュ化して保存（平文保存しない）
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (UserDTO, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(strings.ToLower(in.Email))

	if username == "" {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "invalid email")
	}
	if len(in.Password) < 8 {
		return UserDTO{}, NewHTTPError(http.StatusBadRequest, "password must be at least 8 characters")
	}

	//重複チェック（repo の unique 制約が最後の砦）
	if _, err := u.userRepo.FindByUsername(ctx, username); err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "username already taken")
	} else if err != repo.ErrNotFound {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if _, err := u.userRepo.FindByEmail(ctx, email); err == nil {
		return UserDTO{}, NewHTTPError(http.StatusConflict, "email already registered")
	} else if err != repo.ErrNotFound {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	pwHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserDTO{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	created, err := u.userRepo.Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(pwHash),
		Name:         strings.TrimSpace(in.Name),
		Role:         model.RoleUser,
	})
	if err != nil {
		//同時登録でuniqueに当たった場合
		return UserDTO{}, NewHTTPError(http.StatusConflict, "user already exists")
	}

	return toUserDTO(created), nil
}

// Login は認証してJWTを返す。失敗理由はすべて同じメッセージにする
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "username and password are required")
	}

	user, err := u.userRepo.FindByUsername(ctx, username)
	if err == repo.ErrNotFound {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	token, expiresAt, err := u.issuer.Issue(user.ID, user.Username, user.Role, time.Now())
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return LoginOutput{
		User:      toUserDTO(user),
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}
