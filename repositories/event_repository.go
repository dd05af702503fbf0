package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/athletics-meet/models"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrEventInvalid  = errors.New("event violates a check constraint")
)

type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, exec SQLExecutor, event *models.Event) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	// GetByIDForUpdate блокирует строку события до конца транзакции.
	GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error)
	List(ctx context.Context) ([]*models.Event, error)
}

type postgresEventRepository struct {
	db *sql.DB
}

func NewPostgresEventRepository(db *sql.DB) EventRepository {
	return &postgresEventRepository{db: db}
}

func (r *postgresEventRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const selectEventColumns = `SELECT id, name, kind, gender, category, event_date, start_time, venue, rules, created_at FROM events`

func scanEvent(s rowScanner) (*models.Event, error) {
	var e models.Event
	var rules []byte
	if err := s.Scan(&e.ID, &e.Name, &e.Kind, &e.Gender, &e.Category, &e.Date, &e.StartTime, &e.Venue, &rules, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Rules = rules
	return &e, nil
}

func (r *postgresEventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, kind, gender, category, event_date, start_time, venue, rules)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		event.Name,
		event.Kind,
		event.Gender,
		event.Category,
		event.Date,
		event.StartTime,
		event.Venue,
		rulesOrEmpty(event.Rules),
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if code, _, ok := pqConstraint(err); ok && code == codeCheckViolation {
			return ErrEventInvalid
		}
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (r *postgresEventRepository) Update(ctx context.Context, exec SQLExecutor, event *models.Event) error {
	query := `
		UPDATE events
		SET name = $1, gender = $2, category = $3, event_date = $4, start_time = $5, venue = $6, rules = $7
		WHERE id = $8`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		event.Name,
		event.Gender,
		event.Category,
		event.Date,
		event.StartTime,
		event.Venue,
		rulesOrEmpty(event.Rules),
		event.ID,
	)
	if err != nil {
		if code, _, ok := pqConstraint(err); ok && code == codeCheckViolation {
			return ErrEventInvalid
		}
		return fmt.Errorf("failed to update event %d: %w", event.ID, err)
	}
	return checkAffectedRows(result, ErrEventNotFound)
}

func (r *postgresEventRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	return r.findOne(ctx, exec, selectEventColumns+` WHERE id = $1`, id)
}

func (r *postgresEventRepository) GetByIDForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Event, error) {
	return r.findOne(ctx, exec, selectEventColumns+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresEventRepository) findOne(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Event, error) {
	event, err := scanEvent(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event by id %d: %w", id, err)
	}
	return event, nil
}

func (r *postgresEventRepository) List(ctx context.Context) ([]*models.Event, error) {
	rows, err := r.db.QueryContext(ctx, selectEventColumns+` ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, event)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func rulesOrEmpty(rules []byte) []byte {
	if len(rules) == 0 {
		return []byte("{}")
	}
	return rules
}
