package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mmdatafocus/factory_backend/config"
	"github.com/mmdatafocus/factory_backend/inventory"
	"github.com/mmdatafocus/factory_backend/models"
	"github.com/mmdatafocus/factory_backend/utils"
)

// errorStatus maps domain errors to HTTP status codes. ok is false for
// errors that are not recognised.
func errorStatus(err error) (status int, ok bool) {
	var validation *inventory.ValidationError
	var confirmation *inventory.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirmation):
		return http.StatusConflict, true
	case errors.Is(err, utils.ErrorRecordNotFound), errors.Is(err, models.ErrUnknownCollection):
		if errors.As(err, &validation) {
			// a referenced record is missing, the request itself is wrong
			return http.StatusUnprocessableEntity, true
		}
		return http.StatusNotFound, true
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity, true
	case errors.Is(err, utils.ErrorUnauthorized), errors.Is(err, models.ErrBusinessIdRequired):
		return http.StatusUnauthorized, true
	case errors.Is(err, utils.ErrorBusy):
		return http.StatusConflict, true
	case errors.Is(err, models.ErrEntityInUse),
		errors.Is(err, models.ErrOrderHasShipments),
		errors.Is(err, models.ErrPostedNotDeletable),
		errors.Is(err, models.ErrInvoiceAlreadyPosted),
		errors.Is(err, models.ErrInvoiceNumberInUse),
		errors.Is(err, models.ErrOrderCompleted):
		return http.StatusConflict, true
	case errors.Is(err, models.ErrContainerNumberInUse),
		errors.Is(err, models.ErrInvoicePosted),
		errors.Is(err, models.ErrNothingToShip),
		errors.Is(err, models.ErrOverShipment):
		return http.StatusUnprocessableEntity, true
	}
	return 0, false
}

// respondError writes err for engine and persistence calls.
// Unrecognised errors are logged and reported as 500.
func respondError(c *gin.Context, funcName string, data any, err error) {
	writeError(c, funcName, data, err, http.StatusInternalServerError)
}

// respondInputError is respondError for master data forms, where unrecognised
// errors come from input checks and are reported as 400.
func respondInputError(c *gin.Context, funcName string, data any, err error) {
	writeError(c, funcName, data, err, http.StatusBadRequest)
}

func writeError(c *gin.Context, funcName string, data any, err error, fallback int) {
	status, ok := errorStatus(err)
	if !ok {
		status = fallback
	}
	if status >= http.StatusInternalServerError {
		config.LogError(config.GetLogger(), "server", funcName, "request failed", data, err)
	}
	_ = c.Error(err)

	var confirmation *inventory.ConfirmationRequiredError
	if errors.As(err, &confirmation) {
		c.JSON(status, gin.H{
			"error":                 confirmation.Message,
			"requires_confirmation": true,
			"plan":                  confirmation.Plan,
		})
		return
	}
	body := gin.H{"error": err.Error()}
	var validation *inventory.ValidationError
	if errors.As(err, &validation) && validation.Field != "" {
		body["field"] = validation.Field
	}
	c.JSON(status, body)
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// bindJSON decodes the body and runs validator tags. It writes the 400 itself.
func bindJSON(c *gin.Context, dest any) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		respondBadRequest(c, "invalid request: "+err.Error())
		return false
	}
	if fields := utils.ValidateStruct(dest); len(fields) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "fields": fields})
		return false
	}
	return true
}
