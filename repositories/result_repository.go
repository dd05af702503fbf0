package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/athletics-meet/models"
)

var (
	ErrResultNotFound       = errors.New("result not found")
	ErrResultConflict       = errors.New("result for this athlete already exists in the heat")
	ErrResultHeatInvalid    = errors.New("result heat conflict or invalid")
	ErrResultAthleteInvalid = errors.New("result athlete conflict or invalid")
	ErrResultStatusInvalid  = errors.New("result status and value are inconsistent")
)

type ResultRepository interface {
	CountByHeat(ctx context.Context, exec SQLExecutor, heatID int) (int, error)
	BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.Result) error
	// ListByHeat сортирует по месту, участники без места - в конце.
	ListByHeat(ctx context.Context, exec SQLExecutor, heatID int) ([]*models.Result, error)
	UpdateRank(ctx context.Context, exec SQLExecutor, heatID, athleteID int, rank *int) error
	// Correct обновляет status, result_value и notes уже внесённого результата.
	// Место сбрасывается только при переходе в не-FINISHED статус, иначе остаётся
	// до пересчёта. Нет строки (heat_id, athlete_id) - ErrResultNotFound.
	Correct(ctx context.Context, exec SQLExecutor, result *models.Result) error
}

type postgresResultRepository struct {
	db *sql.DB
}

func NewPostgresResultRepository(db *sql.DB) ResultRepository {
	return &postgresResultRepository{db: db}
}

func (r *postgresResultRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresResultRepository) CountByHeat(ctx context.Context, exec SQLExecutor, heatID int) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM results WHERE heat_id = $1`, heatID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results for heat %d: %w", heatID, err)
	}
	return count, nil
}

func (r *postgresResultRepository) BatchCreate(ctx context.Context, exec SQLExecutor, results []*models.Result) error {
	executor := r.getExecutor(exec)
	query := `
		INSERT INTO results (heat_id, athlete_id, status, result_value, rank, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	for _, res := range results {
		err := executor.QueryRowContext(ctx, query,
			res.HeatID,
			res.AthleteID,
			res.Status,
			res.ResultValue,
			res.Rank,
			res.Notes,
		).Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
		if err != nil {
			return r.handleResultError(err, "create")
		}
	}
	return nil
}

func (r *postgresResultRepository) Correct(ctx context.Context, exec SQLExecutor, res *models.Result) error {
	query := `
		UPDATE results
		SET status = $3,
		    result_value = $4,
		    notes = $5,
		    rank = CASE WHEN $3 = 'FINISHED' THEN rank END,
		    updated_at = NOW()
		WHERE heat_id = $1 AND athlete_id = $2
		RETURNING id, rank, created_at, updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		res.HeatID,
		res.AthleteID,
		res.Status,
		res.ResultValue,
		res.Notes,
	).Scan(&res.ID, &res.Rank, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrResultNotFound
		}
		return r.handleResultError(err, "correct")
	}
	return nil
}

func (r *postgresResultRepository) handleResultError(err error, op string) error {
	if code, constraint, ok := pqConstraint(err); ok {
		switch code {
		case codeUniqueViolation:
			if constraint == "results_heat_id_athlete_id_key" {
				return ErrResultConflict
			}
		case codeForeignKeyViolation:
			switch constraint {
			case "results_heat_id_fkey":
				return ErrResultHeatInvalid
			case "results_athlete_id_fkey":
				return ErrResultAthleteInvalid
			}
		case codeCheckViolation:
			if constraint == "chk_result_value_status" {
				return ErrResultStatusInvalid
			}
		}
	}
	return fmt.Errorf("failed to %s result: %w", op, err)
}

func (r *postgresResultRepository) ListByHeat(ctx context.Context, exec SQLExecutor, heatID int) ([]*models.Result, error) {
	query := `
		SELECT r.id, r.heat_id, r.athlete_id, r.status, r.result_value, r.rank, r.notes, r.created_at, r.updated_at,
		       a.id, a.name, a.bib_number, a.gender, a.category, a.school, a.personal_best, a.created_at
		FROM results r
		JOIN athletes a ON a.id = r.athlete_id
		WHERE r.heat_id = $1
		ORDER BY r.rank ASC NULLS LAST, r.id ASC`

	rows, err := r.getExecutor(exec).QueryContext(ctx, query, heatID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results for heat %d: %w", heatID, err)
	}
	defer rows.Close()

	results := make([]*models.Result, 0)
	for rows.Next() {
		res := &models.Result{}
		a := &models.Athlete{}
		if err := rows.Scan(
			&res.ID, &res.HeatID, &res.AthleteID, &res.Status, &res.ResultValue, &res.Rank, &res.Notes, &res.CreatedAt, &res.UpdatedAt,
			&a.ID, &a.Name, &a.BibNumber, &a.Gender, &a.Category, &a.School, &a.PersonalBest, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result row: %w", err)
		}
		res.Athlete = a
		results = append(results, res)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating result rows: %w", err)
	}
	return results, nil
}

func (r *postgresResultRepository) UpdateRank(ctx context.Context, exec SQLExecutor, heatID, athleteID int, rank *int) error {
	query := `UPDATE results SET rank = $1, updated_at = NOW() WHERE heat_id = $2 AND athlete_id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, rank, heatID, athleteID)
	if err != nil {
		return fmt.Errorf("failed to update rank for athlete %d in heat %d: %w", athleteID, heatID, err)
	}
	return checkAffectedRows(result, ErrResultNotFound)
}
