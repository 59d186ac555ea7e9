package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"main/model"
	"main/repository"
	"main/services"
	"main/utils"
)

var ErrUsernameTaken = errors.New("username already exists")

type UserService struct {
	Repo *repository.UsersRepo
}

// CreateUser registers a new account with a hashed password and a fresh
// user id. Username uniqueness is checked before the insert.
func (svc *UserService) CreateUser(ctx context.Context, input *model.User) (*model.User, error) {
	existing, err := svc.Repo.FindUserByUsername(input.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hashed, err := services.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:    utils.GenerateUserID(),
		Username:  input.Username,
		Email:     input.Email,
		Password:  hashed,
		CreatedAt: time.Now(),
	}

	if _, err := svc.Repo.AddUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
