package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mauth/internal/model"
	appErr "github.com/xxxsen/mauth/internal/pkg/errors"
	"github.com/xxxsen/mauth/internal/pkg/jwt"
	"github.com/xxxsen/mauth/internal/pkg/otp"
	"github.com/xxxsen/mauth/internal/pkg/password"
	"github.com/xxxsen/mauth/internal/repo"
)

const (
	MsgAllFieldsRequired     = "All fields are required"
	MsgUserExists            = "User already exists"
	MsgUserDoesNotExist      = "User does not exist"
	MsgPasswordIncorrect     = "Password is incorrect"
	MsgMissingDetails        = "Missing Details"
	MsgUserNotFound          = "User not found"
	MsgAlreadyVerified       = "Account already verified"
	MsgInvalidOTP            = "Invalid OTP"
	MsgOTPExpired            = "OTP Expired"
	MsgEmailRequired         = "Email is required"
	MsgResetFieldsRequired   = "Email, OTP, and new password are required"
	defaultTokenTTL          = 24 * time.Hour
	defaultVerifyOTPValidity = 24 * time.Hour
	defaultResetOTPValidity  = 15 * time.Minute
)

// AuthOptions is everything the service needs from configuration. Now may be
// replaced in tests.
type AuthOptions struct {
	JWTSecret    []byte
	TokenTTL     time.Duration
	VerifyOTPTTL time.Duration
	ResetOTPTTL  time.Duration
	Now          func() time.Time
}

type AuthService struct {
	accounts repo.IAccountRepo
	notifier *Notifier
	opts     AuthOptions
}

func NewAuthService(accounts repo.IAccountRepo, notifier *Notifier, opts AuthOptions) *AuthService {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = defaultTokenTTL
	}
	if opts.VerifyOTPTTL <= 0 {
		opts.VerifyOTPTTL = defaultVerifyOTPValidity
	}
	if opts.ResetOTPTTL <= 0 {
		opts.ResetOTPTTL = defaultResetOTPValidity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &AuthService{accounts: accounts, notifier: notifier, opts: opts}
}

// Register creates an unverified account and returns it with a fresh session token.
// The welcome mail is best effort: a delivery failure is logged, never returned.
func (s *AuthService) Register(ctx context.Context, name, email, plainPassword string) (*model.Account, string, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || plainPassword == "" {
		return nil, "", appErr.WithMessage(appErr.ErrInvalid, MsgAllFieldsRequired)
	}
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return nil, "", appErr.Hash(err)
	}
	now := s.opts.Now()
	account := &model.Account{
		ID:           newID(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Ctime:        now.UnixMilli(),
		Mtime:        now.UnixMilli(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if appErr.IsConflict(err) {
			return nil, "", appErr.WithMessage(appErr.ErrConflict, MsgUserExists)
		}
		return nil, "", appErr.Store(err)
	}
	token, err := s.issueToken(account.ID)
	if err != nil {
		return nil, "", err
	}
	if err := s.notifier.SendWelcome(ctx, account.Name, account.Email); err != nil {
		logutil.GetLogger(ctx).Warn("welcome mail not delivered", zap.String("account_id", account.ID), zap.Error(err))
	}
	return account, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, plainPassword string) (*model.Account, string, error) {
	email = normalizeEmail(email)
	if email == "" || plainPassword == "" {
		return nil, "", appErr.WithMessage(appErr.ErrInvalid, MsgAllFieldsRequired)
	}
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, "", appErr.WithMessage(appErr.ErrNotFound, MsgUserDoesNotExist)
		}
		return nil, "", appErr.Store(err)
	}
	if err := password.Compare(account.PasswordHash, plainPassword); err != nil {
		if password.IsMismatch(err) {
			return nil, "", appErr.WithMessage(appErr.ErrUnauthorized, MsgPasswordIncorrect)
		}
		return nil, "", appErr.Hash(err)
	}
	token, err := s.issueToken(account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

func (s *AuthService) GetAccount(ctx context.Context, accountID string) (*model.Account, error) {
	if accountID == "" {
		return nil, appErr.WithMessage(appErr.ErrInvalid, MsgMissingDetails)
	}
	return s.loadByID(ctx, accountID)
}

func (s *AuthService) SendVerifyOTP(ctx context.Context, accountID string) error {
	if accountID == "" {
		return appErr.WithMessage(appErr.ErrInvalid, MsgMissingDetails)
	}
	account, err := s.loadByID(ctx, accountID)
	if err != nil {
		return err
	}
	if account.IsVerified {
		return appErr.WithMessage(appErr.ErrConflict, MsgAlreadyVerified)
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	now := s.opts.Now()
	expireAt := now.Add(s.opts.VerifyOTPTTL).UnixMilli()
	if err := s.accounts.SetVerifyOTP(ctx, account.ID, code, expireAt, now.UnixMilli()); err != nil {
		return appErr.Store(err)
	}
	return s.notifier.SendVerifyOTP(ctx, account.Email, code, s.opts.VerifyOTPTTL)
}

func (s *AuthService) VerifyEmail(ctx context.Context, accountID, code string) error {
	code = strings.TrimSpace(code)
	if accountID == "" || code == "" {
		return appErr.WithMessage(appErr.ErrInvalid, MsgMissingDetails)
	}
	account, err := s.loadByID(ctx, accountID)
	if err != nil {
		return err
	}
	now := s.opts.Now()
	if err := checkOTP(account.VerifyOTP, account.VerifyOTPExpireAt, code, now); err != nil {
		return err
	}
	if err := s.accounts.MarkVerified(ctx, account.ID, code, now.UnixMilli()); err != nil {
		return consumeError(err)
	}
	logutil.GetLogger(ctx).Info("account verified", zap.String("account_id", account.ID))
	return nil
}

func (s *AuthService) SendResetOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return appErr.WithMessage(appErr.ErrInvalid, MsgEmailRequired)
	}
	account, err := s.loadByEmail(ctx, email)
	if err != nil {
		return err
	}
	code, err := otp.Generate()
	if err != nil {
		return err
	}
	now := s.opts.Now()
	expireAt := now.Add(s.opts.ResetOTPTTL).UnixMilli()
	if err := s.accounts.SetResetOTP(ctx, account.ID, code, expireAt, now.UnixMilli()); err != nil {
		return appErr.Store(err)
	}
	return s.notifier.SendResetOTP(ctx, account.Email, code, s.opts.ResetOTPTTL)
}

func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = normalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" || newPassword == "" {
		return appErr.WithMessage(appErr.ErrInvalid, MsgResetFieldsRequired)
	}
	account, err := s.loadByEmail(ctx, email)
	if err != nil {
		return err
	}
	now := s.opts.Now()
	if err := checkOTP(account.ResetOTP, account.ResetOTPExpireAt, code, now); err != nil {
		return err
	}
	hash, err := password.Hash(newPassword)
	if err != nil {
		return appErr.Hash(err)
	}
	if err := s.accounts.ResetPassword(ctx, account.ID, code, hash, now.UnixMilli()); err != nil {
		return consumeError(err)
	}
	logutil.GetLogger(ctx).Info("password reset", zap.String("account_id", account.ID))
	return nil
}

func (s *AuthService) issueToken(accountID string) (string, error) {
	token, err := jwt.GenerateToken(accountID, s.opts.JWTSecret, s.opts.Now(), s.opts.TokenTTL)
	if err != nil {
		return "", appErr.Token(err)
	}
	return token, nil
}

func (s *AuthService) loadByID(ctx context.Context, accountID string) (*model.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.WithMessage(appErr.ErrNotFound, MsgUserNotFound)
		}
		return nil, appErr.Store(err)
	}
	return account, nil
}

func (s *AuthService) loadByEmail(ctx context.Context, email string) (*model.Account, error) {
	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if appErr.IsNotFound(err) {
			return nil, appErr.WithMessage(appErr.ErrNotFound, MsgUserNotFound)
		}
		return nil, appErr.Store(err)
	}
	return account, nil
}

// checkOTP rejects an empty or mismatched stored code before looking at expiry.
func checkOTP(stored string, expireAt int64, given string, now time.Time) error {
	if stored == "" || !otp.Valid(given) || subtle.ConstantTimeCompare([]byte(stored), []byte(given)) != 1 {
		return appErr.WithMessage(appErr.ErrInvalidOTP, MsgInvalidOTP)
	}
	if now.UnixMilli() >= expireAt {
		return appErr.WithMessage(appErr.ErrExpired, MsgOTPExpired)
	}
	return nil
}

// consumeError maps a lost race on a one-use code to InvalidOtp.
func consumeError(err error) error {
	if appErr.IsNotFound(err) {
		return appErr.WithMessage(appErr.ErrInvalidOTP, MsgInvalidOTP)
	}
	return appErr.Store(err)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}
