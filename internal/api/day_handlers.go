package api

import (
	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/service"
)

type putDayLabelBody struct {
	LabelID string `json:"label_id"`
}

func PutDayLabel(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var body putDayLabelBody
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		req := service.AssignDayRequest{Date: c.Param("date"), LabelID: body.LabelID}
		if err := service.ValidateAssignDayRequest(&req); err != nil {
			HandleValidationError(c, app.Logger(), err, "Assignment validation failed")
			return
		}

		result, err := service.AssignLabelToDay(c.Request.Context(), app.Labels(), app.Assignments(), user, &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to assign label")
			return
		}
		HandleSuccess(c, app.Logger(), result, map[string]any{"created": result.Created})
	}
}

func GetDay(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		date := c.Param("date")
		if err := service.ValidateDate(date); err != nil {
			HandleValidationError(c, app.Logger(), err, "Invalid date")
			return
		}

		view, err := service.GetAssignmentByDate(c.Request.Context(), app.Labels(), app.Assignments(), user, date)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch assignment")
			return
		}
		// view is nil for unassigned (or self-healed) dates; data stays null.
		if view == nil {
			HandleSuccess(c, app.Logger(), nil, nil)
			return
		}
		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func DeleteDay(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		date := c.Param("date")
		if err := service.ValidateDate(date); err != nil {
			HandleValidationError(c, app.Logger(), err, "Invalid date")
			return
		}

		if err := service.DeleteAssignment(c.Request.Context(), app.Labels(), app.Assignments(), user, date); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete assignment")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}

func GetDays(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		month := c.Query("month")
		if err := service.ValidateMonth(month); err != nil {
			HandleValidationError(c, app.Logger(), err, "Invalid month")
			return
		}

		days, err := service.AssignmentsInMonth(c.Request.Context(), app.Labels(), app.Assignments(), user, month)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch month assignments")
			return
		}
		HandleSuccess(c, app.Logger(), days, map[string]any{"month": month})
	}
}
