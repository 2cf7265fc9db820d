package storage

import "github.com/siarkonyar/fitnessChronicleServer/internal"

// Repositories bundles every store interface backed by one engine.
type Repositories struct {
	Labels      LabelRepository
	Assignments AssignmentRepository
	Exercises   ExerciseLogRepository
	Names       ExerciseNameRepository
	Batch       BatchWriter
	Close       func() error
}

func NewFileRepositories(labelsFile, assignmentsFile, exercisesFile, namesFile string, logger internal.Logger) (*Repositories, error) {
	s, err := NewFileStorage(labelsFile, assignmentsFile, exercisesFile, namesFile, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Labels:      s,
		Assignments: s,
		Exercises:   s,
		Names:       s,
		Batch:       s,
		Close:       s.Close,
	}, nil
}

func NewPostgresRepositories(dsn string, logger internal.Logger) (*Repositories, error) {
	s, err := NewPostgresStorage(dsn, logger)
	if err != nil {
		return nil, err
	}
	return &Repositories{
		Labels:      s,
		Assignments: s,
		Exercises:   s,
		Names:       s,
		Batch:       s,
		Close: func() error {
			s.Close()
			return nil
		},
	}, nil
}
