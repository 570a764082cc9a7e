package repo

import (
	"context"
	"database/sql"

	"github.com/didi/gendry/builder"

	"github.com/xxxsen/mauth/internal/model"
	"github.com/xxxsen/mauth/internal/pkg/dbutil"
	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
)

const accountTable = "accounts"

var accountColumns = []string{
	"id", "name", "email", "password_hash", "is_verified",
	"verify_otp", "verify_otp_expire_at", "reset_otp", "reset_otp_expire_at",
	"ctime", "mtime",
}

type PGAccountRepo struct {
	db *sql.DB
}

func NewPGAccountRepo(db *sql.DB) *PGAccountRepo {
	return &PGAccountRepo{db: db}
}

func (r *PGAccountRepo) Create(ctx context.Context, account *model.Account) error {
	data := map[string]interface{}{
		"id":                   account.ID,
		"name":                 account.Name,
		"email":                account.Email,
		"password_hash":        account.PasswordHash,
		"is_verified":          account.IsVerified,
		"verify_otp":           account.VerifyOTP,
		"verify_otp_expire_at": account.VerifyOTPExpireAt,
		"reset_otp":            account.ResetOTP,
		"reset_otp_expire_at":  account.ResetOTPExpireAt,
		"ctime":                account.Ctime,
		"mtime":                account.Mtime,
	}
	sqlStr, args, err := builder.BuildInsert(accountTable, []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		if dbutil.IsConflict(err) {
			return appErr.ErrConflict
		}
		return err
	}
	return nil
}

func (r *PGAccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getOne(ctx, map[string]interface{}{"id": id})
}

func (r *PGAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getOne(ctx, map[string]interface{}{"email": email})
}

func (r *PGAccountRepo) SetVerifyOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": id}, map[string]interface{}{
		"verify_otp":           otp,
		"verify_otp_expire_at": expireAt,
		"mtime":                mtime,
	})
}

func (r *PGAccountRepo) MarkVerified(ctx context.Context, id, otp string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": id, "verify_otp": otp}, map[string]interface{}{
		"is_verified":          true,
		"verify_otp":           "",
		"verify_otp_expire_at": 0,
		"mtime":                mtime,
	})
}

func (r *PGAccountRepo) SetResetOTP(ctx context.Context, id, otp string, expireAt, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": id}, map[string]interface{}{
		"reset_otp":           otp,
		"reset_otp_expire_at": expireAt,
		"mtime":               mtime,
	})
}

func (r *PGAccountRepo) ResetPassword(ctx context.Context, id, otp, passwordHash string, mtime int64) error {
	return r.update(ctx, map[string]interface{}{"id": id, "reset_otp": otp}, map[string]interface{}{
		"password_hash":       passwordHash,
		"reset_otp":           "",
		"reset_otp_expire_at": 0,
		"mtime":               mtime,
	})
}

func (r *PGAccountRepo) getOne(ctx context.Context, where map[string]interface{}) (*model.Account, error) {
	where["_limit"] = []uint{0, 1}
	sqlStr, args, err := builder.BuildSelect(accountTable, where, accountColumns)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, appErr.ErrNotFound
	}
	var a model.Account
	if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.IsVerified,
		&a.VerifyOTP, &a.VerifyOTPExpireAt, &a.ResetOTP, &a.ResetOTPExpireAt,
		&a.Ctime, &a.Mtime); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PGAccountRepo) update(ctx context.Context, where, update map[string]interface{}) error {
	sqlStr, args, err := builder.BuildUpdate(accountTable, where, update)
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return appErr.ErrNotFound
	}
	return nil
}
