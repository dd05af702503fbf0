package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/athletics-meet/models"
	"github.com/lib/pq"
)

var (
	ErrHeatNotFound       = errors.New("heat not found")
	ErrHeatNumberConflict = errors.New("heat with this number already exists for the event")
	ErrLaneConflict       = errors.New("lane or athlete already assigned in this heat")
	ErrHeatEventInvalid   = errors.New("heat event conflict or invalid")
	ErrLaneAthleteInvalid = errors.New("lane athlete conflict or invalid")
)

type HeatRepository interface {
	CountByEvent(ctx context.Context, exec SQLExecutor, eventID int) (int, error)
	// Create сохраняет забег вместе со всеми дорожками.
	Create(ctx context.Context, exec SQLExecutor, heat *models.Heat) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Heat, error)
	ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Heat, error)
	EventIDsByHeatIDs(ctx context.Context, exec SQLExecutor, heatIDs []int) (map[int]int, error)
}

type postgresHeatRepository struct {
	db *sql.DB
}

func NewPostgresHeatRepository(db *sql.DB) HeatRepository {
	return &postgresHeatRepository{db: db}
}

func (r *postgresHeatRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresHeatRepository) CountByEvent(ctx context.Context, exec SQLExecutor, eventID int) (int, error) {
	var count int
	err := r.getExecutor(exec).QueryRowContext(ctx, `SELECT COUNT(*) FROM heats WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count heats for event %d: %w", eventID, err)
	}
	return count, nil
}

func (r *postgresHeatRepository) Create(ctx context.Context, exec SQLExecutor, heat *models.Heat) error {
	executor := r.getExecutor(exec)

	err := executor.QueryRowContext(ctx,
		`INSERT INTO heats (event_id, heat_number) VALUES ($1, $2) RETURNING id, created_at`,
		heat.EventID, heat.HeatNumber,
	).Scan(&heat.ID, &heat.CreatedAt)
	if err != nil {
		return r.handleHeatError(err)
	}

	laneQuery := `INSERT INTO lanes (heat_id, lane_number, athlete_id) VALUES ($1, $2, $3) RETURNING id`
	for i := range heat.Lanes {
		lane := &heat.Lanes[i]
		lane.HeatID = heat.ID
		if err := executor.QueryRowContext(ctx, laneQuery, lane.HeatID, lane.LaneNumber, lane.AthleteID).Scan(&lane.ID); err != nil {
			return r.handleHeatError(err)
		}
	}
	return nil
}

func (r *postgresHeatRepository) handleHeatError(err error) error {
	if code, constraint, ok := pqConstraint(err); ok {
		switch code {
		case codeUniqueViolation:
			switch constraint {
			case "heats_event_id_heat_number_key":
				return ErrHeatNumberConflict
			case "lanes_heat_id_lane_number_key", "lanes_heat_id_athlete_id_key":
				return ErrLaneConflict
			}
		case codeForeignKeyViolation:
			switch constraint {
			case "heats_event_id_fkey":
				return ErrHeatEventInvalid
			case "lanes_athlete_id_fkey":
				return ErrLaneAthleteInvalid
			}
		}
	}
	return fmt.Errorf("failed to create heat: %w", err)
}

func (r *postgresHeatRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Heat, error) {
	executor := r.getExecutor(exec)

	heat := &models.Heat{}
	err := executor.QueryRowContext(ctx,
		`SELECT id, event_id, heat_number, created_at FROM heats WHERE id = $1`, id,
	).Scan(&heat.ID, &heat.EventID, &heat.HeatNumber, &heat.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHeatNotFound
		}
		return nil, fmt.Errorf("failed to get heat by id %d: %w", id, err)
	}

	lanes, err := r.listLanes(ctx, executor, `WHERE l.heat_id = $1`, id)
	if err != nil {
		return nil, err
	}
	heat.Lanes = lanes[heat.ID]
	if heat.Lanes == nil {
		heat.Lanes = []models.Lane{}
	}
	return heat, nil
}

func (r *postgresHeatRepository) ListByEvent(ctx context.Context, exec SQLExecutor, eventID int) ([]*models.Heat, error) {
	executor := r.getExecutor(exec)

	rows, err := executor.QueryContext(ctx,
		`SELECT id, event_id, heat_number, created_at FROM heats WHERE event_id = $1 ORDER BY heat_number ASC`, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list heats for event %d: %w", eventID, err)
	}
	defer rows.Close()

	heats := make([]*models.Heat, 0)
	for rows.Next() {
		h := &models.Heat{}
		if err := rows.Scan(&h.ID, &h.EventID, &h.HeatNumber, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan heat row: %w", err)
		}
		heats = append(heats, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating heat rows: %w", err)
	}
	if len(heats) == 0 {
		return heats, nil
	}

	lanes, err := r.listLanes(ctx, executor, `JOIN heats h ON h.id = l.heat_id WHERE h.event_id = $1`, eventID)
	if err != nil {
		return nil, err
	}
	for _, h := range heats {
		h.Lanes = lanes[h.ID]
		if h.Lanes == nil {
			h.Lanes = []models.Lane{}
		}
	}
	return heats, nil
}

// listLanes возвращает дорожки с данными спортсменов, сгруппированные по heat_id.
func (r *postgresHeatRepository) listLanes(ctx context.Context, exec SQLExecutor, where string, args ...interface{}) (map[int][]models.Lane, error) {
	query := `
		SELECT l.id, l.heat_id, l.lane_number, l.athlete_id,
		       a.id, a.name, a.bib_number, a.gender, a.category, a.school, a.personal_best, a.created_at
		FROM lanes l
		JOIN athletes a ON a.id = l.athlete_id
		` + where + `
		ORDER BY l.heat_id ASC, l.lane_number ASC`

	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list lanes: %w", err)
	}
	defer rows.Close()

	result := make(map[int][]models.Lane)
	for rows.Next() {
		var l models.Lane
		a := &models.Athlete{}
		if err := rows.Scan(
			&l.ID, &l.HeatID, &l.LaneNumber, &l.AthleteID,
			&a.ID, &a.Name, &a.BibNumber, &a.Gender, &a.Category, &a.School, &a.PersonalBest, &a.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lane row: %w", err)
		}
		l.Athlete = a
		result[l.HeatID] = append(result[l.HeatID], l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating lane rows: %w", err)
	}
	return result, nil
}

func (r *postgresHeatRepository) EventIDsByHeatIDs(ctx context.Context, exec SQLExecutor, heatIDs []int) (map[int]int, error) {
	result := make(map[int]int, len(heatIDs))
	if len(heatIDs) == 0 {
		return result, nil
	}

	rows, err := r.getExecutor(exec).QueryContext(ctx, `SELECT id, event_id FROM heats WHERE id = ANY($1)`, pq.Array(heatIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve events for heats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var heatID, eventID int
		if err := rows.Scan(&heatID, &eventID); err != nil {
			return nil, fmt.Errorf("failed to scan heat event row: %w", err)
		}
		result[heatID] = eventID
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating heat event rows: %w", err)
	}
	return result, nil
}
