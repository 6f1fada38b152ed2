// Package users provides database operations over the user collection.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByUsername("alice")
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/backend-template/internal/auth"
	"github.com/mrlokans/backend-template/internal/entities"
)

// Repository handles all user database operations. It satisfies
// auth.UserRepository.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The unique index on username rejects
// duplicates at the storage layer.
func (r *Repository) Create(user *entities.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return auth.ErrDuplicateUsername
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by id.
func (r *Repository) GetByID(id string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByUsername retrieves a user by username.
func (r *Repository) GetByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by creation time.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// UpdatePassword replaces the stored password hash for the user.
func (r *Repository) UpdatePassword(id, passwordHash string) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrNotFound
	}
	return nil
}

// Delete removes a user by id.
func (r *Repository) Delete(id string) error {
	result := r.db.Where("id = ?", id).Delete(&entities.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return auth.ErrNotFound
	}
	return nil
}
