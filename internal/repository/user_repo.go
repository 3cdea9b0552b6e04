package repository

import (
	"studybuddy/internal/model"

	"gorm.io/gorm"
)

// UserRepository is a read-only view of the users table owned by the account
// service. Identity lifecycle (registration, credentials) happens there; this
// service only resolves identities.
type UserRepository interface {
	FindByID(id string) (*model.User, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}
