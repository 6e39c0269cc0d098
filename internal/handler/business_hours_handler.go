package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tarsit/tarsit-api/internal/dto"
	"github.com/tarsit/tarsit-api/internal/models"
	appErrors "github.com/tarsit/tarsit-api/pkg/errors"
	"github.com/tarsit/tarsit-api/pkg/response"
)

type businessHoursService interface {
	GetBusinessHours(ctx context.Context, businessID string) ([]dto.BusinessHoursResponse, error)
	SetBusinessHours(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.SetBusinessHoursRequest) ([]dto.BusinessHoursResponse, error)
	UpdateDayHours(ctx context.Context, actor *models.JWTClaims, businessID string, day int, req dto.UpdateDayHoursRequest) (*dto.BusinessHoursResponse, error)
	InitializeDefaultHoursFor(ctx context.Context, actor *models.JWTClaims, businessID string) ([]dto.BusinessHoursResponse, error)
	GetAppointmentSettings(ctx context.Context, businessID string) (*models.AppointmentSettings, error)
	UpdateAppointmentSettings(ctx context.Context, actor *models.JWTClaims, businessID string, req dto.UpdateAppointmentSettingsRequest) (*models.AppointmentSettings, error)
}

// BusinessHoursHandler exposes opening hours and appointment settings endpoints.
type BusinessHoursHandler struct {
	service businessHoursService
}

// NewBusinessHoursHandler builds a new handler.
func NewBusinessHoursHandler(service businessHoursService) *BusinessHoursHandler {
	return &BusinessHoursHandler{service: service}
}

// List godoc
// @Summary Get business hours
// @Tags Business Hours
// @Produce json
// @Param businessId path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /businesses/{businessId}/hours [get]
func (h *BusinessHoursHandler) List(c *gin.Context) {
	items, err := h.service.GetBusinessHours(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Set godoc
// @Summary Replace the weekly hours
// @Tags Business Hours
// @Accept json
// @Produce json
// @Param businessId path string true "Business ID"
// @Param payload body dto.SetBusinessHoursRequest true "Weekly hours"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /businesses/{businessId}/hours [post]
func (h *BusinessHoursHandler) Set(c *gin.Context) {
	var req dto.SetBusinessHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid business hours payload"))
		return
	}
	items, err := h.service.SetBusinessHours(c.Request.Context(), claimsFromContext(c), c.Param("businessId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// UpdateDay godoc
// @Summary Upsert hours for one weekday
// @Tags Business Hours
// @Accept json
// @Produce json
// @Param businessId path string true "Business ID"
// @Param dayOfWeek path int true "0 = Sunday .. 6 = Saturday"
// @Param payload body dto.UpdateDayHoursRequest true "Day hours"
// @Success 200 {object} response.Envelope
// @Router /businesses/{businessId}/hours/{dayOfWeek} [put]
func (h *BusinessHoursHandler) UpdateDay(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("dayOfWeek"))
	if err != nil || day < 0 || day > 6 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "dayOfWeek must be between 0 and 6"))
		return
	}
	var req dto.UpdateDayHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid business hours payload"))
		return
	}
	item, err := h.service.UpdateDayHours(c.Request.Context(), claimsFromContext(c), c.Param("businessId"), day, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Initialize godoc
// @Summary Insert the default week where no hours exist
// @Tags Business Hours
// @Produce json
// @Param businessId path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Router /businesses/{businessId}/hours/initialize [post]
func (h *BusinessHoursHandler) Initialize(c *gin.Context) {
	items, err := h.service.InitializeDefaultHoursFor(c.Request.Context(), claimsFromContext(c), c.Param("businessId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// GetSettings godoc
// @Summary Get appointment settings
// @Tags Business Hours
// @Produce json
// @Param businessId path string true "Business ID"
// @Success 200 {object} response.Envelope
// @Router /businesses/{businessId}/appointment-settings [get]
func (h *BusinessHoursHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetAppointmentSettings(c.Request.Context(), c.Param("businessId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary Update appointment settings
// @Tags Business Hours
// @Accept json
// @Produce json
// @Param businessId path string true "Business ID"
// @Param payload body dto.UpdateAppointmentSettingsRequest true "Settings to change"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /businesses/{businessId}/appointment-settings [put]
func (h *BusinessHoursHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateAppointmentSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Invalid(err, "invalid appointment settings payload"))
		return
	}
	settings, err := h.service.UpdateAppointmentSettings(c.Request.Context(), claimsFromContext(c), c.Param("businessId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
