package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

type ExerciseSetRequest struct {
	SetType string `json:"set_type" validate:"required,oneof=normal warmup drop failure"`
	Measure string `json:"measure" validate:"required,oneof=kg lbs sec distance step"`
	Value   string `json:"value,omitempty" validate:"omitempty,max=20"`
	Reps    string `json:"reps,omitempty" validate:"omitempty,max=20"`
}

type CreateExerciseLogRequest struct {
	Date string               `json:"date" validate:"required,datetime=2006-01-02"`
	Name string               `json:"name" validate:"required,min=1,max=100"`
	Sets []ExerciseSetRequest `json:"sets" validate:"dive"`
}

type UpdateExerciseLogRequest struct {
	Date *string              `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Name *string              `json:"name" validate:"omitempty,min=1,max=100"`
	Sets []ExerciseSetRequest `json:"sets" validate:"omitempty,dive"`
}

func ValidateCreateExerciseLogRequest(req *CreateExerciseLogRequest) error {
	return validate.Struct(req)
}

func ValidateUpdateExerciseLogRequest(req *UpdateExerciseLogRequest) error {
	return validate.Struct(req)
}

func toSets(reqs []ExerciseSetRequest) []internal.ExerciseSet {
	sets := make([]internal.ExerciseSet, 0, len(reqs))
	for _, r := range reqs {
		sets = append(sets, internal.ExerciseSet{
			SetType: r.SetType,
			Measure: r.Measure,
			Value:   r.Value,
			Reps:    r.Reps,
		})
	}
	return sets
}

// canonicalName is the dedupe key for the autocomplete index.
func canonicalName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func indexExerciseName(ctx context.Context, names storage.ExerciseNameRepository, userID, display string) error {
	return names.UpsertExerciseName(ctx, &internal.ExerciseName{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      canonicalName(display),
		Display:   strings.TrimSpace(display),
		CreatedAt: time.Now(),
	})
}

func CreateExerciseLog(ctx context.Context, logs storage.ExerciseLogRepository, names storage.ExerciseNameRepository, user *internal.User, req *CreateExerciseLogRequest) (*internal.ExerciseLog, error) {
	now := time.Now()
	log := &internal.ExerciseLog{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Date:      req.Date,
		Name:      strings.TrimSpace(req.Name),
		Sets:      toSets(req.Sets),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := logs.CreateExerciseLog(ctx, log); err != nil {
		return nil, err
	}
	if err := indexExerciseName(ctx, names, user.ID, log.Name); err != nil {
		return nil, err
	}
	return log, nil
}

func GetExerciseLog(ctx context.Context, logs storage.ExerciseLogRepository, user *internal.User, id string) (*internal.ExerciseLog, error) {
	return logs.GetExerciseLog(ctx, user.ID, id)
}

func ListExerciseLogsInMonth(ctx context.Context, logs storage.ExerciseLogRepository, user *internal.User, month string) ([]internal.ExerciseLog, error) {
	first, last, err := monthRange(month)
	if err != nil {
		return nil, err
	}
	return logs.ListExerciseLogsInRange(ctx, user.ID, first, last)
}

func UpdateExerciseLog(ctx context.Context, logs storage.ExerciseLogRepository, names storage.ExerciseNameRepository, user *internal.User, id string, req *UpdateExerciseLogRequest) (*internal.ExerciseLog, error) {
	log, err := logs.GetExerciseLog(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if req.Date != nil {
		log.Date = *req.Date
	}
	if req.Name != nil {
		log.Name = strings.TrimSpace(*req.Name)
	}
	if req.Sets != nil {
		log.Sets = toSets(req.Sets)
	}
	log.UpdatedAt = time.Now()
	if err := logs.UpdateExerciseLog(ctx, log); err != nil {
		return nil, err
	}
	if req.Name != nil {
		if err := indexExerciseName(ctx, names, user.ID, log.Name); err != nil {
			return nil, err
		}
	}
	return log, nil
}

func DeleteExerciseLog(ctx context.Context, logs storage.ExerciseLogRepository, user *internal.User, id string) error {
	return logs.DeleteExerciseLog(ctx, user.ID, id)
}

func ListExerciseNames(ctx context.Context, names storage.ExerciseNameRepository, user *internal.User) ([]internal.ExerciseName, error) {
	return names.ListExerciseNames(ctx, user.ID)
}
