// Package memory is an in-process UserRepository.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"firebase-kit/internal/auth/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

// UserRepository keeps users in maps guarded by a mutex
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*model.User
	byEmail map[string]string
}

// NewUserRepository creates an empty repository
func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*model.User),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) CreateUser(ctx context.Context, user *model.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.UID == "" {
		return errors.New("user ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[user.UID]; exists {
		return apperrors.NewConflictError("user with this uid already exists").WithCause(apperrors.ErrConflict)
	}
	if _, exists := r.byEmail[user.Email]; user.Email != "" && exists {
		return apperrors.NewConflictError("user with this email already exists").WithCause(apperrors.ErrConflict)
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.store(user)
	return nil
}

func (r *UserRepository) GetUserByID(ctx context.Context, uid string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[uid]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(user), nil
}

func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uid, ok := r.byEmail[email]
	if !ok || email == "" {
		return nil, apperrors.ErrUserNotFound
	}
	return copyUser(r.byID[uid]), nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[user.UID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if owner, taken := r.byEmail[user.Email]; user.Email != "" && taken && owner != user.UID {
		return apperrors.NewConflictError("email already in use").WithCause(apperrors.ErrConflict)
	}

	delete(r.byEmail, existing.Email)
	user.UpdatedAt = time.Now().UTC()
	r.store(user)
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[uid]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.byEmail, user.Email)
	delete(r.byID, uid)
	return nil
}

func (r *UserRepository) ListUsers(ctx context.Context, afterUID string, limit int) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	uids := make([]string, 0, len(r.byID))
	for uid := range r.byID {
		if uid > afterUID {
			uids = append(uids, uid)
		}
	}
	sort.Strings(uids)
	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	users := make([]*model.User, 0, len(uids))
	for _, uid := range uids {
		users = append(users, copyUser(r.byID[uid]))
	}
	return users, nil
}

// store must be called with the write lock held
func (r *UserRepository) store(user *model.User) {
	stored := copyUser(user)
	r.byID[user.UID] = stored
	if user.Email != "" {
		r.byEmail[user.Email] = user.UID
	}
}

func copyUser(u *model.User) *model.User {
	c := *u
	if u.CustomClaims != nil {
		c.CustomClaims = make(map[string]interface{}, len(u.CustomClaims))
		for k, v := range u.CustomClaims {
			c.CustomClaims[k] = v
		}
	}
	if u.UsedActionCodes != nil {
		c.UsedActionCodes = make(map[string]time.Time, len(u.UsedActionCodes))
		for k, v := range u.UsedActionCodes {
			c.UsedActionCodes[k] = v
		}
	}
	return &c
}
