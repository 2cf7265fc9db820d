package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

func TestValidateCreateExerciseLogRequest(t *testing.T) {
	valid := &CreateExerciseLogRequest{
		Date: "2025-02-03",
		Name: "Bench Press",
		Sets: []ExerciseSetRequest{
			{SetType: "warmup", Measure: "kg", Value: "40", Reps: "10"},
			{SetType: "normal", Measure: "kg", Value: "80", Reps: "5"},
		},
	}
	assert.NoError(t, ValidateCreateExerciseLogRequest(valid))

	bad := &CreateExerciseLogRequest{
		Date: "2025-02-03",
		Name: "Bench Press",
		Sets: []ExerciseSetRequest{{SetType: "super", Measure: "kg"}},
	}
	assert.Error(t, ValidateCreateExerciseLogRequest(bad))

	bad = &CreateExerciseLogRequest{Date: "03-02-2025", Name: "Bench Press"}
	err := ValidateCreateExerciseLogRequest(bad)
	assert.Error(t, err)
	assert.Contains(t, FieldErrors(err), "date")
}

func TestCreateExerciseLogIndexesName(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()

	log, err := CreateExerciseLog(ctx, repos.Exercises, repos.Names, user, &CreateExerciseLogRequest{
		Date: "2025-02-03",
		Name: "Bench Press",
		Sets: []ExerciseSetRequest{{SetType: "normal", Measure: "kg", Value: "80", Reps: "5"}},
	})
	assert.NoError(t, err)
	assert.Equal(t, "Bench Press", log.Name)

	// Same exercise spelled differently should not duplicate the index.
	_, err = CreateExerciseLog(ctx, repos.Exercises, repos.Names, user, &CreateExerciseLogRequest{
		Date: "2025-02-05",
		Name: "bench press",
	})
	assert.NoError(t, err)

	names, err := ListExerciseNames(ctx, repos.Names, user)
	assert.NoError(t, err)
	assert.Len(t, names, 1)
	assert.Equal(t, "bench press", names[0].Name)
	assert.Equal(t, "bench press", names[0].Display)
}

func TestListExerciseLogsInMonth(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()

	for _, date := range []string{"2025-02-01", "2025-02-28", "2025-03-01"} {
		_, err := CreateExerciseLog(ctx, repos.Exercises, repos.Names, user, &CreateExerciseLogRequest{Date: date, Name: "Squat"})
		assert.NoError(t, err)
	}

	logs, err := ListExerciseLogsInMonth(ctx, repos.Exercises, user, "2025-02")
	assert.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestUpdateExerciseLogPartialPatch(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()

	log, err := CreateExerciseLog(ctx, repos.Exercises, repos.Names, user, &CreateExerciseLogRequest{
		Date: "2025-02-03",
		Name: "Deadlift",
		Sets: []ExerciseSetRequest{{SetType: "normal", Measure: "kg", Value: "120", Reps: "3"}},
	})
	assert.NoError(t, err)

	name := "Romanian Deadlift"
	got, err := UpdateExerciseLog(ctx, repos.Exercises, repos.Names, user, log.ID, &UpdateExerciseLogRequest{Name: &name})
	assert.NoError(t, err)
	assert.Equal(t, "Romanian Deadlift", got.Name)
	assert.Equal(t, log.Date, got.Date)
	assert.Len(t, got.Sets, 1)

	names, err := ListExerciseNames(ctx, repos.Names, user)
	assert.NoError(t, err)
	assert.Len(t, names, 2)

	_, err = UpdateExerciseLog(ctx, repos.Exercises, repos.Names, user, "missing", &UpdateExerciseLogRequest{Name: &name})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestDeleteExerciseLog(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()

	log, err := CreateExerciseLog(ctx, repos.Exercises, repos.Names, user, &CreateExerciseLogRequest{Date: "2025-02-03", Name: "Squat"})
	assert.NoError(t, err)

	assert.NoError(t, DeleteExerciseLog(ctx, repos.Exercises, user, log.ID))
	_, err = GetExerciseLog(ctx, repos.Exercises, user, log.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)
	assert.ErrorIs(t, DeleteExerciseLog(ctx, repos.Exercises, user, log.ID), internal.ErrNotFound)
}
