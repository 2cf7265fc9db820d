package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

type fileSet struct {
	labels, assignments, exercises, names string
}

func testFiles(t *testing.T) fileSet {
	t.Helper()
	dir := t.TempDir()
	return fileSet{
		labels:      filepath.Join(dir, "labels.json"),
		assignments: filepath.Join(dir, "assignments.json"),
		exercises:   filepath.Join(dir, "exercises.json"),
		names:       filepath.Join(dir, "names.json"),
	}
}

func newTestStorage(t *testing.T, f fileSet) *FileStorage {
	t.Helper()
	s, err := NewFileStorage(f.labels, f.assignments, f.exercises, f.names, internal.NewZapLogger(zap.NewNop().Sugar()))
	assert.NoError(t, err)
	return s
}

func TestFileStoragePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	files := testFiles(t)
	s := newTestStorage(t, files)

	label := &internal.Label{ID: "l1", UserID: "u1", Value: "push", Description: "d", Dates: []string{"2025-01-01"}, CreatedAt: time.Now()}
	assert.NoError(t, s.CreateLabel(ctx, label))
	assignment := &internal.DayAssignment{ID: "a1", UserID: "u1", Date: "2025-01-01", LabelID: "l1", CreatedAt: time.Now(), UpdatedAt: time.Now()}
	assert.NoError(t, s.CreateAssignment(ctx, assignment))
	assert.NoError(t, s.Close())

	s2 := newTestStorage(t, files)
	got, err := s2.GetLabel(ctx, "u1", "l1")
	assert.NoError(t, err)
	assert.Equal(t, "push", got.Value)
	assert.Equal(t, []string{"2025-01-01"}, got.Dates)

	a, err := s2.FindAssignmentByDate(ctx, "u1", "2025-01-01")
	assert.NoError(t, err)
	assert.NotNil(t, a)
	assert.Equal(t, "a1", a.ID)
}

func TestAddAndRemoveLabelDate(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	assert.NoError(t, s.CreateLabel(ctx, &internal.Label{ID: "l1", UserID: "u1", Value: "v", CreatedAt: time.Now()}))

	assert.NoError(t, s.AddLabelDate(ctx, "u1", "l1", "2025-01-01"))
	assert.NoError(t, s.AddLabelDate(ctx, "u1", "l1", "2025-01-01")) // idempotent
	got, _ := s.GetLabel(ctx, "u1", "l1")
	assert.Equal(t, []string{"2025-01-01"}, got.Dates)

	assert.NoError(t, s.RemoveLabelDate(ctx, "u1", "l1", "2025-01-01"))
	assert.NoError(t, s.RemoveLabelDate(ctx, "u1", "l1", "2025-01-01")) // idempotent
	got, _ = s.GetLabel(ctx, "u1", "l1")
	assert.Empty(t, got.Dates)

	assert.ErrorIs(t, s.AddLabelDate(ctx, "u1", "missing", "2025-01-01"), internal.ErrNotFound)
}

func TestFindAssignmentByDateAbsent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	a, err := s.FindAssignmentByDate(ctx, "u1", "2025-01-01")
	assert.NoError(t, err)
	assert.Nil(t, a)
}

func TestListAssignmentsInRangeOrdering(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	for i, date := range []string{"2025-01-20", "2025-01-05", "2025-02-01", "2025-01-31"} {
		assert.NoError(t, s.CreateAssignment(ctx, &internal.DayAssignment{
			ID: string(rune('a' + i)), UserID: "u1", Date: date, LabelID: "l1",
		}))
	}

	list, err := s.ListAssignmentsInRange(ctx, "u1", "2025-01-01", "2025-01-31")
	assert.NoError(t, err)
	dates := []string{}
	for _, a := range list {
		dates = append(dates, a.Date)
	}
	assert.Equal(t, []string{"2025-01-05", "2025-01-20", "2025-01-31"}, dates)
}

func TestApplyBatchPutAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	ops := []BatchOp{
		{Label: &internal.Label{ID: "l1", UserID: "u1", Value: "v", CreatedAt: time.Now()}},
		{Exercise: &internal.ExerciseLog{ID: "e1", UserID: "u1", Date: "2025-01-01", Name: "Squat"}},
	}
	assert.NoError(t, s.ApplyBatch(ctx, ops))

	_, err := s.GetLabel(ctx, "u1", "l1")
	assert.NoError(t, err)
	_, err = s.GetExerciseLog(ctx, "u1", "e1")
	assert.NoError(t, err)

	assert.NoError(t, s.ApplyBatch(ctx, []BatchOp{
		{Delete: true, Exercise: &internal.ExerciseLog{ID: "e1", UserID: "u1"}},
	}))
	_, err = s.GetExerciseLog(ctx, "u1", "e1")
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestApplyBatchRejectsOversizedChunk(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	ops := make([]BatchOp, MaxBatchOps+1)
	for i := range ops {
		ops[i] = BatchOp{Label: &internal.Label{ID: "x", UserID: "u1"}}
	}
	assert.Error(t, s.ApplyBatch(ctx, ops))
}

func TestUpsertExerciseNameIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t, testFiles(t))

	assert.NoError(t, s.UpsertExerciseName(ctx, &internal.ExerciseName{ID: "n1", UserID: "u1", Name: "bench press", Display: "Bench Press", CreatedAt: time.Now()}))
	assert.NoError(t, s.UpsertExerciseName(ctx, &internal.ExerciseName{ID: "n2", UserID: "u1", Name: "bench press", Display: "bench PRESS", CreatedAt: time.Now()}))

	names, err := s.ListExerciseNames(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, names, 1)
	assert.Equal(t, "n1", names[0].ID)
	assert.Equal(t, "bench PRESS", names[0].Display)
}
