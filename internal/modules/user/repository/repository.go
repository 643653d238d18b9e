package repository

import (
	"context"
	"strings"

	"anoa.com/cfptracker/internal/entity"
	"anoa.com/cfptracker/pkg/database"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UserRepository interface {
	WithTx(tx *gorm.DB) UserRepository
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByMentionTokens(ctx context.Context, tokens []string) ([]entity.User, error)
	Search(ctx context.Context, query string, limit int) ([]entity.User, error)
	FindAll(ctx context.Context) ([]entity.User, error)
	Count(ctx context.Context) (int64, error)
	IdentityTaken(ctx context.Context, username, email string, exclude *uuid.UUID) (bool, error)
	Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByMentionTokens returns the distinct users whose username equals a token or whose
// email local part equals a token. Tokens that match nobody are ignored.
func (r *userRepository) FindByMentionTokens(ctx context.Context, tokens []string) ([]entity.User, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Where("username IN ?", tokens)
	for _, token := range tokens {
		query = query.Or("email LIKE ? ESCAPE '\\'", database.EscapeLike(token)+"@%")
	}

	var users []entity.User
	if err := query.Order("username asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Search backs the mention autocomplete.
func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]entity.User, error) {
	db := r.db.WithContext(ctx)
	if query != "" {
		pattern := database.ContainsPattern(query)
		db = db.Where("LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(name) LIKE ? ESCAPE '\\'", pattern, pattern)
	}

	var users []entity.User
	if err := db.Order("username asc").Limit(limit).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) FindAll(ctx context.Context) ([]entity.User, error) {
	var users []entity.User
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}

// IdentityTaken reports whether another user already owns the username or email.
func (r *userRepository) IdentityTaken(ctx context.Context, username, email string, exclude *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&entity.User{}).
		Where("(LOWER(username) = ? OR LOWER(email) = ?)", strings.ToLower(username), strings.ToLower(email))
	if exclude != nil {
		query = query.Where("id <> ?", *exclude)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) Updates(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields).Error
}
