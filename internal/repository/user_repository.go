package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/schooldesk/substitute-api/internal/models"
	"github.com/schooldesk/substitute-api/internal/store"
)

const usersFile = "users.json"

// UserRepository persists API accounts.
type UserRepository struct {
	mu    sync.Mutex
	store *store.Store
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(st *store.Store) *UserRepository {
	return &UserRepository{store: st}
}

// List returns all accounts.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if _, err := r.store.LoadJSON(usersFile, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByUsername matches case-insensitively, or returns nil when absent.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Username, username) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// Update applies fn to the account list under one read-modify-write cycle.
func (r *UserRepository) Update(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []models.User
	if _, err := r.store.LoadJSON(usersFile, &users); err != nil {
		return err
	}
	out, err := fn(users)
	if err != nil {
		return err
	}
	if out == nil {
		out = []models.User{}
	}
	return r.store.SaveJSON(usersFile, out)
}
