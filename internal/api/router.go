package api

import (
	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/storage"
)

type app struct {
	logger internal.Logger
	repos  *storage.Repositories
}

func NewApp(logger internal.Logger, repos *storage.Repositories) App {
	return &app{logger: logger, repos: repos}
}

func (a *app) Logger() internal.Logger                   { return a.logger }
func (a *app) Labels() storage.LabelRepository           { return a.repos.Labels }
func (a *app) Assignments() storage.AssignmentRepository { return a.repos.Assignments }
func (a *app) Exercises() storage.ExerciseLogRepository  { return a.repos.Exercises }
func (a *app) Names() storage.ExerciseNameRepository     { return a.repos.Names }

// Routes registers every authenticated procedure. The caller applies auth
// middleware before calling this.
func Routes(r gin.IRouter, a App) {
	r.POST("/api/labels", PostLabel(a))
	r.GET("/api/labels", GetLabels(a))
	r.GET("/api/labels/:id", GetLabel(a))
	r.PATCH("/api/labels/:id", PatchLabel(a))
	r.DELETE("/api/labels/:id", DeleteLabel(a))

	r.GET("/api/days", GetDays(a))
	r.GET("/api/days/:date", GetDay(a))
	r.PUT("/api/days/:date/label", PutDayLabel(a))
	r.DELETE("/api/days/:date", DeleteDay(a))

	r.POST("/api/exercises", PostExercise(a))
	r.GET("/api/exercises", GetExercises(a))
	r.GET("/api/exercises/:id", GetExercise(a))
	r.PATCH("/api/exercises/:id", PatchExercise(a))
	r.DELETE("/api/exercises/:id", DeleteExercise(a))
	r.GET("/api/exercise-names", GetExerciseNames(a))
}
