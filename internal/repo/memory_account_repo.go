package repo

import (
	"context"
	"sync"

	"github.com/xxxsen/mauth/internal/model"
	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
)

// MemoryAccountRepo keeps accounts in process memory. Used by database.type=memory.
type MemoryAccountRepo struct {
	mu      sync.RWMutex
	byID    map[string]*model.Account
	byEmail map[string]string
}

func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{
		byID:    make(map[string]*model.Account),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryAccountRepo) Create(ctx context.Context, account *model.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[account.Email]; ok {
		return appErr.ErrConflict
	}
	if _, ok := r.byID[account.ID]; ok {
		return appErr.ErrConflict
	}
	clone := *account
	r.byID[account.ID] = &clone
	r.byEmail[account.Email] = account.ID
	return nil
}

func (r *MemoryAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	account, ok := r.byID[id]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *account
	return &clone, nil
}

func (r *MemoryAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, appErr.ErrNotFound
	}
	clone := *r.byID[id]
	return &clone, nil
}

func (r *MemoryAccountRepo) SetVerifyOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.update(id, nil, func(a *model.Account) {
		a.VerifyOTP = otp
		a.VerifyOTPExpireAt = expireAt
		a.Mtime = mtime
	})
}

func (r *MemoryAccountRepo) MarkVerified(ctx context.Context, id, otp string, mtime int64) error {
	match := func(a *model.Account) bool { return a.VerifyOTP == otp }
	return r.update(id, match, func(a *model.Account) {
		a.IsVerified = true
		a.VerifyOTP = ""
		a.VerifyOTPExpireAt = 0
		a.Mtime = mtime
	})
}

func (r *MemoryAccountRepo) SetResetOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.update(id, nil, func(a *model.Account) {
		a.ResetOTP = otp
		a.ResetOTPExpireAt = expireAt
		a.Mtime = mtime
	})
}

func (r *MemoryAccountRepo) ResetPassword(ctx context.Context, id, otp, passwordHash string, mtime int64) error {
	match := func(a *model.Account) bool { return a.ResetOTP == otp }
	return r.update(id, match, func(a *model.Account) {
		a.PasswordHash = passwordHash
		a.ResetOTP = ""
		a.ResetOTPExpireAt = 0
		a.Mtime = mtime
	})
}

func (r *MemoryAccountRepo) update(id string, match func(a *model.Account) bool, fn func(a *model.Account)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.byID[id]
	if !ok || (match != nil && !match(account)) {
		return appErr.ErrNotFound
	}
	fn(account)
	return nil
}
