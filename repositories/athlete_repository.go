package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/lib/pq"
)

var (
	ErrAthleteNotFound     = errors.New("athlete not found")
	ErrAthleteBibConflict  = errors.New("athlete bib number already in use")
	ErrAthleteCheckInvalid = errors.New("athlete violates a check constraint")
)

type AthleteFilter struct {
	Gender   *models.Gender
	Category *string
}

type AthleteRepository interface {
	Create(ctx context.Context, athlete *models.Athlete) error
	GetByID(ctx context.Context, id int) (*models.Athlete, error)
	List(ctx context.Context, filter AthleteFilter) ([]*models.Athlete, error)
	// ListEligible возвращает спортсменов того же пола и категории, в порядке регистрации.
	ListEligible(ctx context.Context, exec SQLExecutor, gender models.Gender, category string) ([]*models.Athlete, error)
	GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Athlete, error)
}

type postgresAthleteRepository struct {
	db *sql.DB
}

func NewPostgresAthleteRepository(db *sql.DB) AthleteRepository {
	return &postgresAthleteRepository{db: db}
}

func (r *postgresAthleteRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const selectAthleteColumns = `SELECT id, name, bib_number, gender, category, school, personal_best, created_at FROM athletes`

func scanAthlete(s rowScanner, a *models.Athlete) error {
	return s.Scan(&a.ID, &a.Name, &a.BibNumber, &a.Gender, &a.Category, &a.School, &a.PersonalBest, &a.CreatedAt)
}

func (r *postgresAthleteRepository) Create(ctx context.Context, athlete *models.Athlete) error {
	query := `
		INSERT INTO athletes (name, bib_number, gender, category, school, personal_best)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		athlete.Name,
		athlete.BibNumber,
		athlete.Gender,
		athlete.Category,
		athlete.School,
		athlete.PersonalBest,
	).Scan(&athlete.ID, &athlete.CreatedAt)
	if err != nil {
		if code, constraint, ok := pqConstraint(err); ok {
			switch {
			case code == codeUniqueViolation && constraint == "athletes_bib_number_key":
				return ErrAthleteBibConflict
			case code == codeCheckViolation:
				return ErrAthleteCheckInvalid
			}
		}
		return fmt.Errorf("failed to create athlete: %w", err)
	}
	return nil
}

func (r *postgresAthleteRepository) GetByID(ctx context.Context, id int) (*models.Athlete, error) {
	a := &models.Athlete{}
	err := scanAthlete(r.db.QueryRowContext(ctx, selectAthleteColumns+` WHERE id = $1`, id), a)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAthleteNotFound
		}
		return nil, fmt.Errorf("failed to get athlete by id %d: %w", id, err)
	}
	return a, nil
}

func (r *postgresAthleteRepository) List(ctx context.Context, filter AthleteFilter) ([]*models.Athlete, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectAthleteColumns)
	queryBuilder.WriteString(" WHERE 1=1")

	args := []interface{}{}
	placeholderIndex := 1

	if filter.Gender != nil {
		queryBuilder.WriteString(" AND gender = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Gender)
		placeholderIndex++
	}
	if filter.Category != nil {
		queryBuilder.WriteString(" AND category = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Category)
	}
	queryBuilder.WriteString(" ORDER BY id ASC")

	return r.list(ctx, r.db, queryBuilder.String(), args...)
}

func (r *postgresAthleteRepository) ListEligible(ctx context.Context, exec SQLExecutor, gender models.Gender, category string) ([]*models.Athlete, error) {
	query := selectAthleteColumns + ` WHERE gender = $1 AND category = $2 ORDER BY id ASC`
	return r.list(ctx, r.getExecutor(exec), query, gender, category)
}

func (r *postgresAthleteRepository) GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) (map[int]*models.Athlete, error) {
	result := make(map[int]*models.Athlete, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	athletes, err := r.list(ctx, r.getExecutor(exec), selectAthleteColumns+` WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	for _, a := range athletes {
		result[a.ID] = a
	}
	return result, nil
}

func (r *postgresAthleteRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]*models.Athlete, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list athletes: %w", err)
	}
	defer rows.Close()

	athletes := make([]*models.Athlete, 0)
	for rows.Next() {
		a := &models.Athlete{}
		if err := scanAthlete(rows, a); err != nil {
			return nil, fmt.Errorf("failed to scan athlete row: %w", err)
		}
		athletes = append(athletes, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating athlete rows: %w", err)
	}
	return athletes, nil
}
