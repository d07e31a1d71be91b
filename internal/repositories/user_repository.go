package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/catalogapi/internal/models"
	"github.com/example/catalogapi/internal/services"
)

// UserRepository stores users with gorm.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Transaction runs fn inside a database transaction.
func (r *UserRepository) Transaction(ctx context.Context, fn func(repo services.UserRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx})
	})
}

// EmailExists reports whether a user with the email exists.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, "email = ?", email)
}

// MobileExists reports whether a user with the mobile number exists.
func (r *UserRepository) MobileExists(ctx context.Context, mobile string) (bool, error) {
	return r.exists(ctx, "mobile = ?", mobile)
}

func (r *UserRepository) exists(ctx context.Context, cond string, value string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where(cond, value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error
	return translateUserConflict(err)
}

// FindByEmail loads the user with the email, or nil when there is none.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
