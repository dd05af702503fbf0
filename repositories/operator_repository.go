package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/athletics-meet/models"
)

var (
	ErrOperatorNotFound      = errors.New("operator not found")
	ErrOperatorEmailConflict = errors.New("operator email already exists")
)

type OperatorRepository interface {
	Create(ctx context.Context, op *models.Operator) error
	GetByEmail(ctx context.Context, email string) (*models.Operator, error)
}

type postgresOperatorRepository struct {
	db *sql.DB
}

func NewPostgresOperatorRepository(db *sql.DB) OperatorRepository {
	return &postgresOperatorRepository{db: db}
}

func (r *postgresOperatorRepository) Create(ctx context.Context, op *models.Operator) error {
	query := `INSERT INTO operators (email, password_hash, role) VALUES ($1, $2, $3) RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, op.Email, op.PasswordHash, op.Role).Scan(&op.ID, &op.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok && code == codeUniqueViolation && constraint == "operators_email_key" {
			return ErrOperatorEmailConflict
		}
		return fmt.Errorf("failed to create operator: %w", err)
	}
	return nil
}

func (r *postgresOperatorRepository) GetByEmail(ctx context.Context, email string) (*models.Operator, error) {
	query := `SELECT id, email, password_hash, role, created_at FROM operators WHERE email = $1`
	op := &models.Operator{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&op.ID, &op.Email, &op.PasswordHash, &op.Role, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOperatorNotFound
		}
		return nil, fmt.Errorf("failed to get operator by email: %w", err)
	}
	return op, nil
}
