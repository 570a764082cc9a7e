package repo

import (
	"context"

	"github.com/xxxsen/mauth/internal/model"
)

// IAccountRepo is implemented by every account store. Create must report a
// duplicate email as errors.ErrConflict from the store's own unique index, and
// lookups report a missing account as errors.ErrNotFound. MarkVerified and
// ResetPassword only apply while the stored code still equals otp, otherwise
// they report errors.ErrNotFound, so a code is consumed at most once.
type IAccountRepo interface {
	Create(ctx context.Context, account *model.Account) error
	GetByID(ctx context.Context, id string) (*model.Account, error)
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	SetVerifyOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error
	MarkVerified(ctx context.Context, id, otp string, mtime int64) error
	SetResetOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error
	ResetPassword(ctx context.Context, id, otp, passwordHash string, mtime int64) error
}
