package api

import (
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Labels() storage.LabelRepository
	Assignments() storage.AssignmentRepository
	Exercises() storage.ExerciseLogRepository
	Names() storage.ExerciseNameRepository
}
