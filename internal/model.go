package internal

import "time"

type User struct {
	ID    string `json:"id"`
	Token string `json:"token"`
	Name  string `json:"name"`
}

// Label is a short display token a user can pin to calendar days.
// Dates is the denormalized list of days the label is currently assigned to;
// the assignment service keeps it in sync with the day assignments.
type Label struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Value       string    `json:"value"`       // 1-10 chars
	Description string    `json:"description"` // 1-100 chars
	Dates       []string  `json:"dates"`       // YYYY-MM-DD, set semantics
	CreatedAt   time.Time `json:"created_at"`
}

// DayAssignment links one calendar date to one label. At most one exists
// per (user, date); reassignment updates LabelID in place.
type DayAssignment struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"` // YYYY-MM-DD
	LabelID   string    `json:"label_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ExerciseSet struct {
	SetType string `json:"set_type"`        // normal, warmup, drop, failure
	Measure string `json:"measure"`         // kg, lbs, sec, distance, step
	Value   string `json:"value,omitempty"` // free-form measurement
	Reps    string `json:"reps,omitempty"`
}

type ExerciseLog struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Date      string        `json:"date"` // YYYY-MM-DD
	Name      string        `json:"name"`
	Sets      []ExerciseSet `json:"sets"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ExerciseName is one entry in the per-user autocomplete index. Name is the
// canonical lower-cased key, Display the spelling as last written.
type ExerciseName struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Display   string    `json:"display"`
	CreatedAt time.Time `json:"created_at"`
}
