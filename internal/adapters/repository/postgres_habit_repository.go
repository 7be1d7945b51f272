package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/devbd1/routiner-server/internal/core/domain"
)

// PostgresHabitRepository stores each habit as one row. The repetition
// day sets are integer[] columns, the per-day progress map is JSONB,
// and writes are guarded by an optimistic version stamp.
type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

const habitColumns = `
    id, user_id, title, notes,
    goal_enabled, goal_value, goal_unit, goal_type,
    repeat_type, repeat_every, days_of_week, days_of_month, repeat_date, repeat_pattern,
    progress, current_streak, longest_streak,
    version, created_at, updated_at`

type scannable interface {
	Scan(dest ...interface{}) error
}

func toDayArray(days []int) pq.Int64Array {
	arr := make(pq.Int64Array, len(days))
	for i, d := range days {
		arr[i] = int64(d)
	}
	return arr
}

func fromDayArray(arr pq.Int64Array) []int {
	if len(arr) == 0 {
		return nil
	}
	days := make([]int, len(arr))
	for i, d := range arr {
		days[i] = int(d)
	}
	return days
}

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var daysOfWeek, daysOfMonth pq.Int64Array
	var progressJSON []byte

	err := row.Scan(
		&h.ID, &h.UserID, &h.Title, &h.Notes,
		&h.GoalEnabled, &h.GoalValue, &h.GoalUnit, &h.GoalType,
		&h.Repetition.Type, &h.Repetition.Every, &daysOfWeek, &daysOfMonth,
		&h.Repetition.Date, &h.Repetition.Pattern,
		&progressJSON, &h.CurrentStreak, &h.LongestStreak,
		&h.Version, &h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Repetition.DaysOfWeek = fromDayArray(daysOfWeek)
	h.Repetition.DaysOfMonth = fromDayArray(daysOfMonth)

	h.Progress = make(map[string]float64)
	if len(progressJSON) > 0 {
		if err := json.Unmarshal(progressJSON, &h.Progress); err != nil {
			return nil, fmt.Errorf("failed to unmarshal progress: %w", err)
		}
	}

	return &h, nil
}

func marshalProgress(h *domain.Habit) ([]byte, error) {
	progress, err := json.Marshal(h.Progress)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal progress: %w", err)
	}
	return progress, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	progressJSON, err := marshalProgress(h)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO habits (` + habitColumns + `
        ) VALUES (
            $1, $2, $3, $4,
            $5, $6, $7, $8,
            $9, $10, $11, $12, $13, $14,
            $15, $16, $17,
            1, $18, $19
        )`

	_, err = r.db.ExecContext(ctx, query,
		h.ID, h.UserID, h.Title, h.Notes,
		h.GoalEnabled, h.GoalValue, h.GoalUnit, h.GoalType,
		h.Repetition.Type, h.Repetition.Every, toDayArray(h.Repetition.DaysOfWeek), toDayArray(h.Repetition.DaysOfMonth),
		h.Repetition.Date, h.Repetition.Pattern,
		progressJSON, h.CurrentStreak, h.LongestStreak,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}

	h.Version = 1
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits WHERE id = $1`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) GetByTitle(ctx context.Context, userID, title string) (*domain.Habit, error) {
	query := `SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND LOWER(title) = LOWER(TRIM($2))`

	h, err := r.scanRow(r.db.QueryRowContext(ctx, query, userID, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}

	return h, nil
}

func (r *PostgresHabitRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1
        ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	progressJSON, err := marshalProgress(h)
	if err != nil {
		return err
	}

	query := `
        UPDATE habits SET
            title=$1, notes=$2,
            goal_enabled=$3, goal_value=$4, goal_unit=$5, goal_type=$6,
            repeat_type=$7, repeat_every=$8, days_of_week=$9, days_of_month=$10,
            repeat_date=$11, repeat_pattern=$12,
            progress=$13, current_streak=$14, longest_streak=$15,
            updated_at=NOW(), version = version + 1
        WHERE id=$16 AND version=$17
        RETURNING version, updated_at`

	row := r.db.QueryRowContext(ctx, query,
		h.Title, h.Notes,
		h.GoalEnabled, h.GoalValue, h.GoalUnit, h.GoalType,
		h.Repetition.Type, h.Repetition.Every, toDayArray(h.Repetition.DaysOfWeek), toDayArray(h.Repetition.DaysOfMonth),
		h.Repetition.Date, h.Repetition.Pattern,
		progressJSON, h.CurrentStreak, h.LongestStreak,
		h.ID, h.Version,
	)

	var newVersion int
	var newUpdatedAt time.Time

	if err := row.Scan(&newVersion, &newUpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			var count int
			if checkErr := r.db.QueryRowContext(ctx, `SELECT count(*) FROM habits WHERE id = $1`, h.ID).Scan(&count); checkErr != nil {
				return fmt.Errorf("existence check failed: %w", checkErr)
			}
			if count == 0 {
				return domain.ErrHabitNotFound
			}
			return domain.ErrHabitConflict
		}
		return fmt.Errorf("update query failed: %w", err)
	}

	h.Version = newVersion
	h.UpdatedAt = newUpdatedAt

	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}

func (r *PostgresHabitRepository) GetChanges(ctx context.Context, userID string, since time.Time) ([]*domain.Habit, error) {
	query := `SELECT ` + habitColumns + `
        FROM habits
        WHERE user_id = $1 AND updated_at > $2
        ORDER BY updated_at ASC`

	rows, err := r.db.QueryContext(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("sync query error: %w", err)
	}
	defer rows.Close()

	var habits []*domain.Habit
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("sync row scan error: %w", err)
		}
		habits = append(habits, h)
	}

	return habits, rows.Err()
}

// UpdateStreaks stamps computed streak counters without touching the
// version, so a concurrent client edit is never invalidated by the
// background worker.
func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, longest int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, longest_streak = $2, updated_at = NOW()
        WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, current, longest, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}

	return nil
}
