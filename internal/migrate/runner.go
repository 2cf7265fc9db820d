package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

// Runner commits bulk writes in size-bounded batches. Batches go out
// sequentially; total time is linear in record count, which keeps memory and
// store quota predictable.
type Runner struct {
	batch     storage.BatchWriter
	logger    internal.Logger
	chunkSize int
}

func NewRunner(batch storage.BatchWriter, logger internal.Logger) *Runner {
	return &Runner{batch: batch, logger: logger, chunkSize: storage.MaxBatchOps}
}

// Apply writes all ops in chunks of at most chunkSize.
func (r *Runner) Apply(ctx context.Context, ops []storage.BatchOp) error {
	for start := 0; start < len(ops); start += r.chunkSize {
		end := start + r.chunkSize
		if end > len(ops) {
			end = len(ops)
		}
		if err := r.batch.ApplyBatch(ctx, ops[start:end]); err != nil {
			return fmt.Errorf("migrate: batch starting at %d: %w", start, err)
		}
		r.logger.Infof("migrate: committed %d/%d ops", end, len(ops))
	}
	return nil
}

// LegacyEmoji is the pre-rename schema: the display token lived in an "emoji"
// field and records carried no description requirement.
type LegacyEmoji struct {
	ID          string   `json:"id"`
	UserID      string   `json:"user_id"`
	Emoji       string   `json:"emoji"`
	Description string   `json:"description"`
	Dates       []string `json:"dates"`
}

// Relabel rewrites legacy emoji records as labels across all users.
func (r *Runner) Relabel(ctx context.Context, records []LegacyEmoji) (int, error) {
	ops := make([]storage.BatchOp, 0, len(records))
	now := time.Now()
	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		dates := rec.Dates
		if dates == nil {
			dates = []string{}
		}
		ops = append(ops, storage.BatchOp{Label: &internal.Label{
			ID:          id,
			UserID:      rec.UserID,
			Value:       rec.Emoji,
			Description: rec.Description,
			Dates:       dates,
			CreatedAt:   now,
		}})
	}
	if err := r.Apply(ctx, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// ReconcileDates walks every label across all users and drops date entries
// whose day assignment no longer points at the label. The assign sequence is
// not atomic across documents, so a crash between its writes can strand such
// entries; this pass repairs them in bulk. Returns the number of labels
// rewritten.
func (r *Runner) ReconcileDates(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository) (int, error) {
	all, err := labels.ScanLabels(ctx)
	if err != nil {
		return 0, err
	}
	ops := []storage.BatchOp{}
	for i := range all {
		label := &all[i]
		kept := make([]string, 0, len(label.Dates))
		for _, date := range label.Dates {
			a, err := assignments.FindAssignmentByDate(ctx, label.UserID, date)
			if err != nil {
				return 0, err
			}
			if a != nil && a.LabelID == label.ID {
				kept = append(kept, date)
			}
		}
		if len(kept) == len(label.Dates) {
			continue
		}
		label.Dates = kept
		ops = append(ops, storage.BatchOp{Label: label})
	}
	if err := r.Apply(ctx, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}

// PurgeLogs bulk-deletes every exercise log a user owns.
func (r *Runner) PurgeLogs(ctx context.Context, logs storage.ExerciseLogRepository, userID string) (int, error) {
	records, err := logs.ListExerciseLogs(ctx, userID)
	if err != nil {
		return 0, err
	}
	ops := make([]storage.BatchOp, 0, len(records))
	for i := range records {
		ops = append(ops, storage.BatchOp{Delete: true, Exercise: &records[i]})
	}
	if err := r.Apply(ctx, ops); err != nil {
		return 0, err
	}
	return len(ops), nil
}
