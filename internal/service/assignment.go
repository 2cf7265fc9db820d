package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

// The assignment service owns the invariant that a date appears in a label's
// Dates list exactly when a day assignment for that date points at the label.
// The multi-document sequence in AssignLabelToDay is not atomic; a crash
// between writes can leave the lists stale until the next mutation or
// self-healing read for the same date.

type AssignDayRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	LabelID string `json:"label_id" validate:"required"`
}

func ValidateAssignDayRequest(req *AssignDayRequest) error {
	return validate.Struct(req)
}

type AssignDayResult struct {
	Assignment *internal.DayAssignment `json:"assignment"`
	// Created distinguishes a fresh assignment from a repointed one for
	// caller messaging.
	Created bool `json:"created"`
}

// AssignLabelToDay upserts the single assignment for req.Date and keeps the
// affected labels' date lists in step. Returns internal.ErrNotFound when the
// target label does not exist.
func AssignLabelToDay(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository, user *internal.User, req *AssignDayRequest) (*AssignDayResult, error) {
	if _, err := labels.GetLabel(ctx, user.ID, req.LabelID); err != nil {
		return nil, err
	}

	existing, err := assignments.FindAssignmentByDate(ctx, user.ID, req.Date)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	var result AssignDayResult
	var previousLabelID string
	if existing != nil {
		previousLabelID = existing.LabelID
		if err := assignments.SetAssignmentLabel(ctx, user.ID, existing.ID, req.LabelID, now); err != nil {
			return nil, err
		}
		existing.LabelID = req.LabelID
		existing.UpdatedAt = now
		result.Assignment = existing
	} else {
		a := &internal.DayAssignment{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Date:      req.Date,
			LabelID:   req.LabelID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := assignments.CreateAssignment(ctx, a); err != nil {
			return nil, err
		}
		result.Assignment = a
		result.Created = true
	}

	if err := labels.AddLabelDate(ctx, user.ID, req.LabelID, req.Date); err != nil {
		return nil, err
	}

	if previousLabelID != "" && previousLabelID != req.LabelID {
		if err := labels.RemoveLabelDate(ctx, user.ID, previousLabelID, req.Date); err != nil && err != internal.ErrNotFound {
			return nil, err
		}
	}

	return &result, nil
}

type DayAssignmentView struct {
	Assignment *internal.DayAssignment `json:"assignment"`
	Label      *internal.Label         `json:"label"`
}

// GetAssignmentByDate returns the assignment and its label for a date, or
// (nil, nil) when the date is unassigned. An assignment whose label no longer
// exists is deleted before returning nil (self-heal).
func GetAssignmentByDate(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository, user *internal.User, date string) (*DayAssignmentView, error) {
	a, err := assignments.FindAssignmentByDate(ctx, user.ID, date)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, nil
	}
	label, err := labels.GetLabel(ctx, user.ID, a.LabelID)
	if err == internal.ErrNotFound {
		if derr := assignments.DeleteAssignment(ctx, user.ID, a.ID); derr != nil && derr != internal.ErrNotFound {
			return nil, derr
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &DayAssignmentView{Assignment: a, Label: label}, nil
}

// DeleteAssignment removes the assignment for a date and pulls the date out
// of the owning label's date list.
func DeleteAssignment(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository, user *internal.User, date string) error {
	a, err := assignments.FindAssignmentByDate(ctx, user.ID, date)
	if err != nil {
		return err
	}
	if a == nil {
		return internal.ErrNotFound
	}
	if err := labels.RemoveLabelDate(ctx, user.ID, a.LabelID, date); err != nil && err != internal.ErrNotFound {
		return err
	}
	return assignments.DeleteAssignment(ctx, user.ID, a.ID)
}

type DayLabel struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

// monthRange expands YYYY-MM into its inclusive first and last calendar day.
func monthRange(month string) (string, string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	first := t.Format("2006-01-02")
	last := t.AddDate(0, 1, -1).Format("2006-01-02")
	return first, last, nil
}

// AssignmentsInMonth lists {date, label value} pairs for every assigned day
// in the month. Each distinct label is resolved once; assignments pointing at
// deleted labels are removed and omitted.
func AssignmentsInMonth(ctx context.Context, labels storage.LabelRepository, assignments storage.AssignmentRepository, user *internal.User, month string) ([]DayLabel, error) {
	first, last, err := monthRange(month)
	if err != nil {
		return nil, err
	}
	list, err := assignments.ListAssignmentsInRange(ctx, user.ID, first, last)
	if err != nil {
		return nil, err
	}

	resolved := map[string]*internal.Label{}
	days := []DayLabel{}
	for i := range list {
		a := &list[i]
		label, seen := resolved[a.LabelID]
		if !seen {
			label, err = labels.GetLabel(ctx, user.ID, a.LabelID)
			if err == internal.ErrNotFound {
				label = nil
			} else if err != nil {
				return nil, err
			}
			resolved[a.LabelID] = label
		}
		if label == nil {
			if derr := assignments.DeleteAssignment(ctx, user.ID, a.ID); derr != nil && derr != internal.ErrNotFound {
				return nil, derr
			}
			continue
		}
		days = append(days, DayLabel{Date: a.Date, Value: label.Value})
	}
	return days, nil
}
