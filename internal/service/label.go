package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

type CreateLabelRequest struct {
	Value       string `json:"value" validate:"required,min=1,max=10"`
	Description string `json:"description" validate:"required,min=1,max=100"`
}

// UpdateLabelRequest is a partial patch: only non-nil fields are written.
type UpdateLabelRequest struct {
	Value       *string `json:"value" validate:"omitempty,min=1,max=10"`
	Description *string `json:"description" validate:"omitempty,min=1,max=100"`
}

func ValidateCreateLabelRequest(req *CreateLabelRequest) error {
	return validate.Struct(req)
}

func ValidateUpdateLabelRequest(req *UpdateLabelRequest) error {
	return validate.Struct(req)
}

func CreateLabel(ctx context.Context, labels storage.LabelRepository, user *internal.User, req *CreateLabelRequest) (*internal.Label, error) {
	label := &internal.Label{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Value:       req.Value,
		Description: req.Description,
		Dates:       []string{},
		CreatedAt:   time.Now(),
	}
	if err := labels.CreateLabel(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

func ListLabels(ctx context.Context, labels storage.LabelRepository, user *internal.User) ([]internal.Label, error) {
	return labels.ListLabels(ctx, user.ID)
}

func GetLabel(ctx context.Context, labels storage.LabelRepository, user *internal.User, id string) (*internal.Label, error) {
	return labels.GetLabel(ctx, user.ID, id)
}

func UpdateLabel(ctx context.Context, labels storage.LabelRepository, user *internal.User, id string, req *UpdateLabelRequest) (*internal.Label, error) {
	label, err := labels.GetLabel(ctx, user.ID, id)
	if err != nil {
		return nil, err
	}
	if req.Value != nil {
		label.Value = *req.Value
	}
	if req.Description != nil {
		label.Description = *req.Description
	}
	if err := labels.UpdateLabel(ctx, label); err != nil {
		return nil, err
	}
	return label, nil
}

// DeleteLabel cascades: every assignment pointing at the label goes with it,
// so no dangling references are left for reads to clean up.
func DeleteLabel(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository, user *internal.User, id string) error {
	if _, err := labels.GetLabel(ctx, user.ID, id); err != nil {
		return err
	}
	assigned, err := assignments.ListAssignmentsByLabel(ctx, user.ID, id)
	if err != nil {
		return err
	}
	for _, a := range assigned {
		if err := assignments.DeleteAssignment(ctx, user.ID, a.ID); err != nil && err != internal.ErrNotFound {
			return err
		}
	}
	return labels.DeleteLabel(ctx, user.ID, id)
}
