package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"banking-api/internal/core/domain"
	"banking-api/internal/core/ports"
	"banking-api/pkg/apperror"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo    ports.UserRepository
	accountRepo ports.AccountRepository
	transactor  ports.DBTransactor
	hashSvc     ports.HashService
	tokenSvc    ports.TokenService
	log         zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	accountRepo ports.AccountRepository,
	transactor ports.DBTransactor,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		transactor:  transactor,
		hashSvc:     hashSvc,
		tokenSvc:    tokenSvc,
		log:         log,
	}
}

// Register creates a new user with a zero-balance account. Both inserts run
// in one transaction: a failure on either side leaves no trace, so a user who
// can log in always has an account. The pre-check gives the common duplicate
// a fast answer; the race where two registrations pass it together is caught
// by the storage layer and mapped to the same conflict error.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*ports.RegisterResult, error) {
	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameTaken()
	}

	passwordHash, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	tx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin registration: %w", err))
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now().UTC()
	user := &domain.User{
		Username:     req.Username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
	}
	if err := s.userRepo.CreateTx(ctx, tx, user); err != nil {
		if errors.Is(err, ports.ErrDuplicateUsername) {
			return nil, apperror.ErrUsernameTaken()
		}
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	owner := req.Owner
	if owner == "" {
		owner = req.Username
	}
	account := &domain.Account{
		UserID:    user.ID,
		Owner:     owner,
		Balance:   decimal.Zero,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.accountRepo.CreateTx(ctx, tx, account); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create account: %w", err))
	}

	if err := tx.Commit(ctx); err != nil {
		if errors.Is(err, ports.ErrDuplicateUsername) {
			return nil, apperror.ErrUsernameTaken()
		}
		return nil, apperror.InternalError(fmt.Errorf("commit registration: %w", err))
	}

	s.log.Info().
		Int64("user_id", user.ID).
		Int64("account_id", account.ID).
		Msg("user registered")

	return &ports.RegisterResult{UserID: user.ID, AccountID: account.ID}, nil
}

// Login validates credentials and returns a signed session token.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, time.Time, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return "", time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiry, err := s.tokenSvc.Generate(user.ID, user.Username)
	if err != nil {
		return "", time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	return token, expiry, nil
}
