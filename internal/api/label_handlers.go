package api

import (
	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/service"
)

func PostLabel(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.CreateLabelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateCreateLabelRequest(&req); err != nil {
			HandleValidationError(c, app.Logger(), err, "Label validation failed")
			return
		}

		label, err := service.CreateLabel(c.Request.Context(), app.Labels(), user, &req)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save label")
			return
		}
		HandleSuccess(c, app.Logger(), label, nil)
	}
}

func GetLabels(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		labels, err := service.ListLabels(c.Request.Context(), app.Labels(), user)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch labels")
			return
		}
		HandleSuccess(c, app.Logger(), labels, nil)
	}
}

func GetLabel(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		label, err := service.GetLabel(c.Request.Context(), app.Labels(), user, c.Param("id"))
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to fetch label")
			return
		}
		HandleSuccess(c, app.Logger(), label, nil)
	}
}

func PatchLabel(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var req service.UpdateLabelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		if err := service.ValidateUpdateLabelRequest(&req); err != nil {
			HandleValidationError(c, app.Logger(), err, "Label validation failed")
			return
		}

		label, err := service.UpdateLabel(c.Request.Context(), app.Labels(), user, c.Param("id"), &req)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to update label")
			return
		}
		HandleSuccess(c, app.Logger(), label, nil)
	}
}

func DeleteLabel(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		if err := service.DeleteLabel(c.Request.Context(), app.Labels(), app.Assignments(), user, c.Param("id")); err != nil {
			HandleServiceError(c, app.Logger(), err, "Failed to delete label")
			return
		}
		HandleSuccess(c, app.Logger(), nil, map[string]any{"deleted": true})
	}
}
