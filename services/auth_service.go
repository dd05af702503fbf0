package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/Dosada05/athletics-meet/repositories"
)

const minPasswordLength = 8

type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (*models.Operator, error)
	CreateOperator(ctx context.Context, email, password string, role models.OperatorRole) (*models.Operator, error)
}

type authService struct {
	operatorRepo repositories.OperatorRepository
	logger       *slog.Logger
}

func NewAuthService(operatorRepo repositories.OperatorRepository, logger *slog.Logger) AuthService {
	return &authService{operatorRepo: operatorRepo, logger: logger}
}

func (s *authService) Login(ctx context.Context, creds models.Credentials) (*models.Operator, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if email == "" || creds.Password == "" {
		return nil, validationError("email and password are required")
	}

	op, err := s.operatorRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrOperatorNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load operator: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(creds.Password)); err != nil {
		s.logger.Warn("failed login attempt", slog.String("email", email))
		return nil, ErrInvalidCredentials
	}
	return op, nil
}

func (s *authService) CreateOperator(ctx context.Context, email, password string, role models.OperatorRole) (*models.Operator, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, validationError("invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, validationError("password must be at least %d characters", minPasswordLength)
	}
	if role != models.RoleAdmin && role != models.RoleOrganizer {
		return nil, validationError("role must be admin or organizer")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	op := &models.Operator{Email: email, PasswordHash: string(hash), Role: role}
	if err := s.operatorRepo.Create(ctx, op); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("operator created", slog.Int("operator_id", op.ID), slog.String("role", string(role)))
	return op, nil
}
