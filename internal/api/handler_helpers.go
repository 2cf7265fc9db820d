package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/siarkonyar/fitnessChronicleServer/internal"
	"github.com/siarkonyar/fitnessChronicleServer/internal/response"
	"github.com/siarkonyar/fitnessChronicleServer/internal/service"
)

func HandleError(c *gin.Context, logger internal.Logger, err error, status int, msg string) {
	requestID := c.GetString("request_id")
	logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
	var resp response.APIResponse
	switch status {
	case 400:
		resp = response.BadRequest(msg + ": " + err.Error())
	case 404:
		resp = response.NotFound(msg + ": " + err.Error())
	case 500:
		resp = response.InternalError(msg + ": " + err.Error())
	default:
		resp = response.NewAppError(status, msg+": "+err.Error())
	}
	c.JSON(status, resp)
}

// HandleValidationError reports schema violations with per-field detail.
func HandleValidationError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
	c.JSON(400, response.ValidationFailed(msg, service.FieldErrors(err)))
}

// HandleServiceError maps domain errors onto status codes: missing entities
// become 404, everything else 500.
func HandleServiceError(c *gin.Context, logger internal.Logger, err error, msg string) {
	if errors.Is(err, internal.ErrNotFound) {
		HandleError(c, logger, err, 404, msg)
		return
	}
	HandleError(c, logger, err, 500, msg)
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] Success", requestID)
	c.JSON(200, response.Success(data, meta))
}
