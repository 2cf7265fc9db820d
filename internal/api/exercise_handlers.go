package api

import (
	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/service"
)

func PostExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.CreateExerciseLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCreateExerciseLogRequest(&req); err != nil {
			HandleValidationError(c, app.Logger(), err, "Exercise validation failed")
			return
		}

		log, err := service.CreateExerciseLog(c.Request.Context(), app.Exercises(), app.Names(), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save exercise log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func GetExercises(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		month := c.Query("month")
		if err := service.ValidateMonth(month); err != nil {
			HandleValidationError(c, app.Logger(), err, "Invalid month")
			return
		}

		logs, err := service.ListExerciseLogsInMonth(c.Request.Context(), app.Exercises(), user, month)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch exercise logs")
			return
		}
		HandleSuccess(c, app.Logger(), logs, map[string]any{"month": month})
	}
}

func GetExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		log, err := service.GetExerciseLog(c.Request.Context(), app.Exercises(), user, c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch exercise log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func PatchExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.UpdateExerciseLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateUpdateExerciseLogRequest(&req); err != nil {
			HandleValidationError(c, app.Logger(), err, "Exercise validation failed")
			return
		}

		log, err := service.UpdateExerciseLog(c.Request.Context(), app.Exercises(), app.Names(), user, c.Param("id"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update exercise log")
			return
		}
		HandleSuccess(c, app.Logger(), log, nil)
	}
}

func DeleteExercise(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		if err := service.DeleteExerciseLog(c.Request.Context(), app.Exercises(), user, c.Param("id")); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete exercise log")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}

func GetExerciseNames(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		names, err := service.ListExerciseNames(c.Request.Context(), app.Names(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch exercise names")
			return
		}
		HandleSuccess(c, app.Logger(), names, nil)
	}
}
