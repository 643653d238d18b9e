package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/internal/modules/admin/dto"
	userDto "anoa.com/cfptracker/internal/modules/user/dto"
	"anoa.com/cfptracker/internal/modules/user/repository"
	"anoa.com/cfptracker/pkg/apperror"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Usernames use the same characters a mention token can, so every user is mentionable.
var usernamePattern = regexp.MustCompile(`^\w+$`)

type AdminService interface {
	CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error)
	GetAllUsers(ctx context.Context) ([]*userDto.UserResponse, error)
	UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateAdminUserInput) (*userDto.UserResponse, error)
}

type adminService struct {
	userRepo repository.UserRepository
}

func NewAdminService(userRepo repository.UserRepository) AdminService {
	return &adminService{userRepo: userRepo}
}

func validUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("%w: username may only contain letters, digits and underscores", apperror.ErrInvalidInput)
	}
	return nil
}

func (s *adminService) CreateUser(ctx context.Context, input dto.CreateUserInput) (*userDto.UserResponse, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if err := validUsername(username); err != nil {
		return nil, err
	}

	taken, err := s.userRepo.IdentityTaken(ctx, username, email, nil)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: username or email already registered", apperror.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Username:     username,
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: string(hashed),
		Role:         input.Role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return userDto.ToUserResponse(user), nil
}

func (s *adminService) GetAllUsers(ctx context.Context) ([]*userDto.UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*userDto.UserResponse, 0, len(users))
	for i := range users {
		res = append(res, userDto.ToUserResponse(&users[i]))
	}
	return res, nil
}

func (s *adminService) UpdateUser(ctx context.Context, id uuid.UUID, input dto.UpdateAdminUserInput) (*userDto.UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	fields := map[string]interface{}{}
	var newUsername, newEmail string
	if username := strings.TrimSpace(input.Username); username != "" && username != user.Username {
		if err := validUsername(username); err != nil {
			return nil, err
		}
		newUsername = username
		fields["username"] = username
	}
	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" && email != user.Email {
		newEmail = email
		fields["email"] = email
	}
	if newUsername != "" || newEmail != "" {
		taken, err := s.userRepo.IdentityTaken(ctx, newUsername, newEmail, &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: username or email already registered", apperror.ErrConflict)
		}
	}
	if name := strings.TrimSpace(input.Name); name != "" {
		fields["name"] = name
	}
	if input.Role != "" {
		fields["role"] = input.Role
	}
	if input.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password_hash"] = string(hashed)
	}

	if err := s.userRepo.Updates(ctx, id, fields); err != nil {
		return nil, err
	}
	updated, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return userDto.ToUserResponse(updated), nil
}
