package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

func (p *PostgresStorage) Close() {
	p.pool.Close()
}

// --- LabelRepository ---

func (p *PostgresStorage) CreateLabel(ctx context.Context, label *internal.Label) error {
	dates := label.Dates
	if dates == nil {
		dates = []string{}
	}
	_, err := p.pool.Exec(ctx, `INSERT INTO labels (id, user_id, value, description, dates, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		label.ID, label.UserID, label.Value, label.Description, dates, label.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert label: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) GetLabel(ctx context.Context, userID, id string) (*internal.Label, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, value, description, dates, created_at FROM labels WHERE user_id = $1 AND id = $2`, userID, id)
	var l internal.Label
	if err := row.Scan(&l.ID, &l.UserID, &l.Value, &l.Description, &l.Dates, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to get label: %v", err)
		return nil, err
	}
	return &l, nil
}

func (p *PostgresStorage) ListLabels(ctx context.Context, userID string) ([]internal.Label, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, value, description, dates, created_at FROM labels WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query labels: %v", err)
		return nil, err
	}
	defer rows.Close()

	labels := []internal.Label{}
	for rows.Next() {
		var l internal.Label
		if err := rows.Scan(&l.ID, &l.UserID, &l.Value, &l.Description, &l.Dates, &l.CreatedAt); err != nil {
			p.logger.Errorf("failed to scan label: %v", err)
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (p *PostgresStorage) UpdateLabel(ctx context.Context, label *internal.Label) error {
	dates := label.Dates
	if dates == nil {
		dates = []string{}
	}
	ct, err := p.pool.Exec(ctx, `UPDATE labels SET value = $3, description = $4, dates = $5 WHERE user_id = $1 AND id = $2`,
		label.UserID, label.ID, label.Value, label.Description, dates)
	if err != nil {
		p.logger.Errorf("failed to update label: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteLabel(ctx context.Context, userID, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM labels WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		p.logger.Errorf("failed to delete label: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

// AddLabelDate is a single guarded statement, so the set-add is atomic at the
// row level.
func (p *PostgresStorage) AddLabelDate(ctx context.Context, userID, id, date string) error {
	ct, err := p.pool.Exec(ctx, `UPDATE labels SET dates = array_append(dates, $3) WHERE user_id = $1 AND id = $2 AND NOT ($3 = ANY(dates))`,
		userID, id, date)
	if err != nil {
		p.logger.Errorf("failed to add label date: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		// Either the label is gone or the date is already present.
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM labels WHERE user_id = $1 AND id = $2)`, userID, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return internal.ErrNotFound
		}
	}
	return nil
}

func (p *PostgresStorage) RemoveLabelDate(ctx context.Context, userID, id, date string) error {
	ct, err := p.pool.Exec(ctx, `UPDATE labels SET dates = array_remove(dates, $3) WHERE user_id = $1 AND id = $2`,
		userID, id, date)
	if err != nil {
		p.logger.Errorf("failed to remove label date: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ScanLabels(ctx context.Context) ([]internal.Label, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, value, description, dates, created_at FROM labels ORDER BY user_id, created_at`)
	if err != nil {
		p.logger.Errorf("failed to scan labels: %v", err)
		return nil, err
	}
	defer rows.Close()

	labels := []internal.Label{}
	for rows.Next() {
		var l internal.Label
		if err := rows.Scan(&l.ID, &l.UserID, &l.Value, &l.Description, &l.Dates, &l.CreatedAt); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// --- AssignmentRepository ---

func (p *PostgresStorage) CreateAssignment(ctx context.Context, a *internal.DayAssignment) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO day_assignments (id, user_id, date, label_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.UserID, a.Date, a.LabelID, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert assignment: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) FindAssignmentByDate(ctx context.Context, userID, date string) (*internal.DayAssignment, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, date, label_id, created_at, updated_at FROM day_assignments WHERE user_id = $1 AND date = $2 LIMIT 1`, userID, date)
	var a internal.DayAssignment
	if err := row.Scan(&a.ID, &a.UserID, &a.Date, &a.LabelID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		p.logger.Errorf("failed to find assignment: %v", err)
		return nil, err
	}
	return &a, nil
}

func (p *PostgresStorage) SetAssignmentLabel(ctx context.Context, userID, id, labelID string, updatedAt time.Time) error {
	ct, err := p.pool.Exec(ctx, `UPDATE day_assignments SET label_id = $3, updated_at = $4 WHERE user_id = $1 AND id = $2`,
		userID, id, labelID, updatedAt)
	if err != nil {
		p.logger.Errorf("failed to update assignment: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteAssignment(ctx context.Context, userID, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM day_assignments WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		p.logger.Errorf("failed to delete assignment: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) ListAssignmentsInRange(ctx context.Context, userID, from, to string) ([]internal.DayAssignment, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, date, label_id, created_at, updated_at FROM day_assignments WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date ASC`,
		userID, from, to)
	if err != nil {
		p.logger.Errorf("failed to query assignments: %v", err)
		return nil, err
	}
	defer rows.Close()

	assignments := []internal.DayAssignment{}
	for rows.Next() {
		var a internal.DayAssignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.LabelID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func (p *PostgresStorage) ListAssignmentsByLabel(ctx context.Context, userID, labelID string) ([]internal.DayAssignment, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, date, label_id, created_at, updated_at FROM day_assignments WHERE user_id = $1 AND label_id = $2 ORDER BY date ASC`,
		userID, labelID)
	if err != nil {
		p.logger.Errorf("failed to query assignments by label: %v", err)
		return nil, err
	}
	defer rows.Close()

	assignments := []internal.DayAssignment{}
	for rows.Next() {
		var a internal.DayAssignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Date, &a.LabelID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// --- ExerciseLogRepository ---

func (p *PostgresStorage) CreateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error {
	sets, err := json.Marshal(log.Sets)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `INSERT INTO exercise_logs (id, user_id, date, name, sets, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.UserID, log.Date, log.Name, sets, log.CreatedAt, log.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to insert exercise log: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) scanExerciseLog(row pgx.Row) (*internal.ExerciseLog, error) {
	var e internal.ExerciseLog
	var sets []byte
	if err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.Name, &sets, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if len(sets) > 0 {
		if err := json.Unmarshal(sets, &e.Sets); err != nil {
			return nil, err
		}
	}
	return &e, nil
}

func (p *PostgresStorage) GetExerciseLog(ctx context.Context, userID, id string) (*internal.ExerciseLog, error) {
	row := p.pool.QueryRow(ctx, `SELECT id, user_id, date, name, sets, created_at, updated_at FROM exercise_logs WHERE user_id = $1 AND id = $2`, userID, id)
	e, err := p.scanExerciseLog(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal.ErrNotFound
		}
		p.logger.Errorf("failed to get exercise log: %v", err)
		return nil, err
	}
	return e, nil
}

func (p *PostgresStorage) listExerciseLogs(ctx context.Context, query string, args ...any) ([]internal.ExerciseLog, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		p.logger.Errorf("failed to query exercise logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	logs := []internal.ExerciseLog{}
	for rows.Next() {
		e, err := p.scanExerciseLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *e)
	}
	return logs, rows.Err()
}

func (p *PostgresStorage) ListExerciseLogsInRange(ctx context.Context, userID, from, to string) ([]internal.ExerciseLog, error) {
	return p.listExerciseLogs(ctx, `SELECT id, user_id, date, name, sets, created_at, updated_at FROM exercise_logs WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY created_at DESC`,
		userID, from, to)
}

func (p *PostgresStorage) ListExerciseLogs(ctx context.Context, userID string) ([]internal.ExerciseLog, error) {
	return p.listExerciseLogs(ctx, `SELECT id, user_id, date, name, sets, created_at, updated_at FROM exercise_logs WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (p *PostgresStorage) UpdateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error {
	sets, err := json.Marshal(log.Sets)
	if err != nil {
		return err
	}
	ct, err := p.pool.Exec(ctx, `UPDATE exercise_logs SET date = $3, name = $4, sets = $5, updated_at = $6 WHERE user_id = $1 AND id = $2`,
		log.UserID, log.ID, log.Date, log.Name, sets, log.UpdatedAt)
	if err != nil {
		p.logger.Errorf("failed to update exercise log: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

func (p *PostgresStorage) DeleteExerciseLog(ctx context.Context, userID, id string) error {
	ct, err := p.pool.Exec(ctx, `DELETE FROM exercise_logs WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		p.logger.Errorf("failed to delete exercise log: %v", err)
		return err
	}
	if ct.RowsAffected() == 0 {
		return internal.ErrNotFound
	}
	return nil
}

// --- ExerciseNameRepository ---

func (p *PostgresStorage) UpsertExerciseName(ctx context.Context, name *internal.ExerciseName) error {
	_, err := p.pool.Exec(ctx, `INSERT INTO exercise_names (id, user_id, name, display, created_at) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name) DO UPDATE SET display = EXCLUDED.display`,
		name.ID, name.UserID, name.Name, name.Display, name.CreatedAt)
	if err != nil {
		p.logger.Errorf("failed to upsert exercise name: %v", err)
		return err
	}
	return nil
}

func (p *PostgresStorage) ListExerciseNames(ctx context.Context, userID string) ([]internal.ExerciseName, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, user_id, name, display, created_at FROM exercise_names WHERE user_id = $1 ORDER BY name ASC`, userID)
	if err != nil {
		p.logger.Errorf("failed to query exercise names: %v", err)
		return nil, err
	}
	defer rows.Close()

	names := []internal.ExerciseName{}
	for rows.Next() {
		var n internal.ExerciseName
		if err := rows.Scan(&n.ID, &n.UserID, &n.Name, &n.Display, &n.CreatedAt); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// --- BatchWriter ---

// ApplyBatch sends the whole chunk as one pgx batch over a single connection.
func (p *PostgresStorage) ApplyBatch(ctx context.Context, ops []BatchOp) error {
	if len(ops) > MaxBatchOps {
		return fmt.Errorf("storage: batch of %d exceeds limit of %d", len(ops), MaxBatchOps)
	}
	b := &pgx.Batch{}
	for _, op := range ops {
		switch {
		case op.Label != nil:
			if op.Delete {
				b.Queue(`DELETE FROM labels WHERE user_id = $1 AND id = $2`, op.Label.UserID, op.Label.ID)
			} else {
				dates := op.Label.Dates
				if dates == nil {
					dates = []string{}
				}
				b.Queue(`INSERT INTO labels (id, user_id, value, description, dates, created_at) VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (id) DO UPDATE SET value = EXCLUDED.value, description = EXCLUDED.description, dates = EXCLUDED.dates`,
					op.Label.ID, op.Label.UserID, op.Label.Value, op.Label.Description, dates, op.Label.CreatedAt)
			}
		case op.Assignment != nil:
			if op.Delete {
				b.Queue(`DELETE FROM day_assignments WHERE user_id = $1 AND id = $2`, op.Assignment.UserID, op.Assignment.ID)
			} else {
				b.Queue(`INSERT INTO day_assignments (id, user_id, date, label_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6)
					ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, label_id = EXCLUDED.label_id, updated_at = EXCLUDED.updated_at`,
					op.Assignment.ID, op.Assignment.UserID, op.Assignment.Date, op.Assignment.LabelID, op.Assignment.CreatedAt, op.Assignment.UpdatedAt)
			}
		case op.Exercise != nil:
			if op.Delete {
				b.Queue(`DELETE FROM exercise_logs WHERE user_id = $1 AND id = $2`, op.Exercise.UserID, op.Exercise.ID)
			} else {
				sets, err := json.Marshal(op.Exercise.Sets)
				if err != nil {
					return err
				}
				b.Queue(`INSERT INTO exercise_logs (id, user_id, date, name, sets, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7)
					ON CONFLICT (id) DO UPDATE SET date = EXCLUDED.date, name = EXCLUDED.name, sets = EXCLUDED.sets, updated_at = EXCLUDED.updated_at`,
					op.Exercise.ID, op.Exercise.UserID, op.Exercise.Date, op.Exercise.Name, sets, op.Exercise.CreatedAt, op.Exercise.UpdatedAt)
			}
		case op.Name != nil:
			if op.Delete {
				b.Queue(`DELETE FROM exercise_names WHERE user_id = $1 AND id = $2`, op.Name.UserID, op.Name.ID)
			} else {
				b.Queue(`INSERT INTO exercise_names (id, user_id, name, display, created_at) VALUES ($1, $2, $3, $4, $5)
					ON CONFLICT (user_id, name) DO UPDATE SET display = EXCLUDED.display`,
					op.Name.ID, op.Name.UserID, op.Name.Name, op.Name.Display, op.Name.CreatedAt)
			}
		}
	}
	br := p.pool.SendBatch(ctx, b)
	defer br.Close()
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			p.logger.Errorf("batch op %d failed: %v", i, err)
			return err
		}
	}
	return nil
}

// --- Compile-time assertions ---
var _ LabelRepository = (*PostgresStorage)(nil)
var _ AssignmentRepository = (*PostgresStorage)(nil)
var _ ExerciseLogRepository = (*PostgresStorage)(nil)
var _ ExerciseNameRepository = (*PostgresStorage)(nil)
var _ BatchWriter = (*PostgresStorage)(nil)
