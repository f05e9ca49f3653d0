package user

import (
	"context"
	"errors"
	"strings"

	"ecochain-be/internal/logger"
	"ecochain-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, input LoginInput) (*AuthResult, error)
	Me(ctx context.Context) (*User, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	log := logger.FromCtx(ctx).With(zap.String("method", "Register"), zap.String("email", email))

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, ErrFailedRegister
	}

	u := &User{
		Email:        email,
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashed,
		Role:         selfServiceRole(input.Role),
	}

	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrEmailExists) {
			log.Warn("email already registered")
			return nil, err
		}
		log.Error("failed to create user", zap.Error(err))
		return nil, ErrFailedRegister
	}

	token, err := GenerateJWT(u.ID, u.Role, u.Email)
	if err != nil {
		log.Error("failed to generate jwt", zap.Uint("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	log.Info("user registered", zap.Uint("user_id", u.ID), zap.String("role", u.Role))
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := normalizeEmail(input.Email)
	log := logger.FromCtx(ctx).With(zap.String("method", "Login"))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		log.Error("failed to find user", zap.Error(err))
		return nil, err
	}
	if u == nil || !CheckPasswordHash(input.Password, u.PasswordHash) {
		log.Warn("login failed", zap.String("email", email))
		return nil, ErrInvalidCredentials
	}

	token, err := GenerateJWT(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: u}, nil
}

func (s *service) Me(ctx context.Context) (*User, error) {
	id, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotFound
	}
	u, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
