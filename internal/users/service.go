package users

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/joao-fontenele/coffeeshop/internal/domain"
)

type Store interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type Service struct {
	store      Store
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Service)

// WithBcryptCost overrides bcrypt.DefaultCost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func NewService(store Store, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		store:      store,
		logger:     logger,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NormalizeEmail trims and lowercases an address so lookups and the unique
// constraint agree.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindByEmail returns nil, nil for an unknown email.
func (s *Service) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, domain.NewStoreError("find user", err)
	}
	return user, nil
}

// Register creates a non-worker, active account. The password is stored only
// as a bcrypt hash.
func (s *Service) Register(ctx context.Context, email, password, confirmation string) (domain.User, error) {
	if password != confirmation {
		return domain.User{}, domain.ErrPasswordMismatch
	}

	email = NormalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return domain.User{}, domain.ErrInvalidEmail
	}
	if len(password) == 0 || len(password) > 72 {
		return domain.User{}, domain.ErrInvalidPassword
	}

	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return domain.User{}, domain.NewStoreError("find user", err)
	}
	if existing != nil {
		return domain.User{}, domain.ErrAccountExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		Email:        email,
		PasswordHash: string(hash),
		IsWorker:     false,
		IsActive:     true,
	}
	if err := s.store.Create(ctx, &user); err != nil {
		if errors.Is(err, domain.ErrAccountExists) {
			return domain.User{}, err
		}
		return domain.User{}, domain.NewStoreError("create user", err)
	}

	s.logger.Info("user registered", "email", user.Email)
	return user, nil
}

// Authenticate fails with domain.ErrUserNotFound for an unknown email and
// domain.ErrInvalidCredentials for a wrong password.
func (s *Service) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return domain.User{}, domain.NewStoreError("find user", err)
	}
	if user == nil {
		return domain.User{}, domain.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	if !user.IsActive {
		return domain.User{}, domain.ErrAccountDisabled
	}

	return *user, nil
}
