package storage

import (
	"context"
	"time"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

type LabelRepository interface {
	CreateLabel(ctx context.Context, label *internal.Label) error
	// GetLabel returns internal.ErrNotFound when no label matches.
	GetLabel(ctx context.Context, userID, id string) (*internal.Label, error)
	// ListLabels returns the user's labels ordered by CreatedAt descending.
	ListLabels(ctx context.Context, userID string) ([]internal.Label, error)
	UpdateLabel(ctx context.Context, label *internal.Label) error
	DeleteLabel(ctx context.Context, userID, id string) error
	// AddLabelDate and RemoveLabelDate are atomic per-document set operations.
	AddLabelDate(ctx context.Context, userID, id, date string) error
	RemoveLabelDate(ctx context.Context, userID, id, date string) error
	// ScanLabels iterates every user's labels. Bulk maintenance only.
	ScanLabels(ctx context.Context) ([]internal.Label, error)
}

type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, a *internal.DayAssignment) error
	// FindAssignmentByDate returns (nil, nil) when the date has no assignment.
	// The store does not enforce uniqueness; this limit-1 query is the
	// uniqueness boundary.
	FindAssignmentByDate(ctx context.Context, userID, date string) (*internal.DayAssignment, error)
	// SetAssignmentLabel repoints an existing assignment in place.
	SetAssignmentLabel(ctx context.Context, userID, id, labelID string, updatedAt time.Time) error
	DeleteAssignment(ctx context.Context, userID, id string) error
	// ListAssignmentsInRange returns assignments with from <= date <= to,
	// ordered by date ascending.
	ListAssignmentsInRange(ctx context.Context, userID, from, to string) ([]internal.DayAssignment, error)
	ListAssignmentsByLabel(ctx context.Context, userID, labelID string) ([]internal.DayAssignment, error)
}

type ExerciseLogRepository interface {
	CreateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error
	GetExerciseLog(ctx context.Context, userID, id string) (*internal.ExerciseLog, error)
	// ListExerciseLogsInRange returns logs with from <= date <= to, ordered by
	// CreatedAt descending.
	ListExerciseLogsInRange(ctx context.Context, userID, from, to string) ([]internal.ExerciseLog, error)
	ListExerciseLogs(ctx context.Context, userID string) ([]internal.ExerciseLog, error)
	UpdateExerciseLog(ctx context.Context, log *internal.ExerciseLog) error
	DeleteExerciseLog(ctx context.Context, userID, id string) error
}

type ExerciseNameRepository interface {
	// UpsertExerciseName is idempotent on (UserID, Name); re-upserting an
	// existing name refreshes Display only.
	UpsertExerciseName(ctx context.Context, name *internal.ExerciseName) error
	// ListExerciseNames returns the user's index ordered by Name ascending.
	ListExerciseNames(ctx context.Context, userID string) ([]internal.ExerciseName, error)
}

// MaxBatchOps caps one batch below the store's hard per-batch limit of 500.
const MaxBatchOps = 450

// BatchOp is one write in a multi-document batch. Exactly one record pointer
// is set; Delete switches the op from put to delete.
type BatchOp struct {
	Delete     bool
	Label      *internal.Label
	Assignment *internal.DayAssignment
	Exercise   *internal.ExerciseLog
	Name       *internal.ExerciseName
}

type BatchWriter interface {
	// ApplyBatch commits up to MaxBatchOps writes. Callers chunk larger sets.
	ApplyBatch(ctx context.Context, ops []BatchOp) error
}
