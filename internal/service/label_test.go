package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/siarkonyar/fitnessChronicleServer/internal"
)

func TestValidateCreateLabelRequest(t *testing.T) {
	assert.NoError(t, ValidateCreateLabelRequest(&CreateLabelRequest{Value: "leg day", Description: "lower body"}))

	err := ValidateCreateLabelRequest(&CreateLabelRequest{Value: "", Description: "lower body"})
	assert.Error(t, err)
	assert.Contains(t, FieldErrors(err), "value")

	err = ValidateCreateLabelRequest(&CreateLabelRequest{Value: "elevenchars", Description: "x"})
	assert.Error(t, err)

	err = ValidateCreateLabelRequest(&CreateLabelRequest{Value: "ok", Description: strings.Repeat("d", 101)})
	assert.Error(t, err)
	assert.Contains(t, FieldErrors(err), "description")
}

func TestListLabelsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()

	mustCreateLabel(t, repos, user, "first")
	time.Sleep(5 * time.Millisecond)
	mustCreateLabel(t, repos, user, "second")

	labels, err := ListLabels(ctx, repos.Labels, user)
	assert.NoError(t, err)
	assert.Len(t, labels, 2)
	assert.Equal(t, "second", labels[0].Value)
	assert.Equal(t, "first", labels[1].Value)
}

func TestUpdateLabelPartialPatch(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()
	label := mustCreateLabel(t, repos, user, "old")

	value := "new"
	got, err := UpdateLabel(ctx, repos.Labels, user, label.ID, &UpdateLabelRequest{Value: &value})
	assert.NoError(t, err)
	assert.Equal(t, "new", got.Value)
	// Absent fields stay untouched.
	assert.Equal(t, label.Description, got.Description)

	desc := "rewritten"
	got, err = UpdateLabel(ctx, repos.Labels, user, label.ID, &UpdateLabelRequest{Description: &desc})
	assert.NoError(t, err)
	assert.Equal(t, "new", got.Value)
	assert.Equal(t, "rewritten", got.Description)

	_, err = UpdateLabel(ctx, repos.Labels, user, "missing", &UpdateLabelRequest{Value: &value})
	assert.ErrorIs(t, err, internal.ErrNotFound)
}

func TestDeleteLabelCascadesToAssignments(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()
	a := mustCreateLabel(t, repos, user, "gone")
	keep := mustCreateLabel(t, repos, user, "keep")

	for _, date := range []string{"2025-07-01", "2025-07-02"} {
		_, err := AssignLabelToDay(ctx, repos.Labels, repos.Assignments, user, &AssignDayRequest{Date: date, LabelID: a.ID})
		assert.NoError(t, err)
	}
	_, err := AssignLabelToDay(ctx, repos.Labels, repos.Assignments, user, &AssignDayRequest{Date: "2025-07-03", LabelID: keep.ID})
	assert.NoError(t, err)

	assert.NoError(t, DeleteLabel(ctx, repos.Labels, repos.Assignments, user, a.ID))

	_, err = GetLabel(ctx, repos.Labels, user, a.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	for _, date := range []string{"2025-07-01", "2025-07-02"} {
		orphan, ferr := repos.Assignments.FindAssignmentByDate(ctx, user.ID, date)
		assert.NoError(t, ferr)
		assert.Nil(t, orphan)
	}
	// Unrelated assignments survive.
	left, err := repos.Assignments.FindAssignmentByDate(ctx, user.ID, "2025-07-03")
	assert.NoError(t, err)
	assert.NotNil(t, left)

	assert.ErrorIs(t, DeleteLabel(ctx, repos.Labels, repos.Assignments, user, a.ID), internal.ErrNotFound)
}

func TestLabelsScopedPerUser(t *testing.T) {
	ctx := context.Background()
	repos := setupRepos(t)
	user := testUser()
	other := &internal.User{ID: "u2", Token: "t2", Name: "Other"}

	label := mustCreateLabel(t, repos, user, "mine")

	_, err := GetLabel(ctx, repos.Labels, other, label.ID)
	assert.ErrorIs(t, err, internal.ErrNotFound)

	labels, err := ListLabels(ctx, repos.Labels, other)
	assert.NoError(t, err)
	assert.Empty(t, labels)
}
