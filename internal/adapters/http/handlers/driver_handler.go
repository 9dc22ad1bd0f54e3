package handlers

import (
	"errors"
	"strconv"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"
	"driverdesk/internal/core/services"
	"driverdesk/internal/pkg/pagination"
	"driverdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// DriverHandler handles driver record endpoints
type DriverHandler struct {
	driverService *services.DriverService
}

// NewDriverHandler creates a new driver handler
func NewDriverHandler(driverService *services.DriverService) *DriverHandler {
	return &DriverHandler{
		driverService: driverService,
	}
}

// List returns drivers filtered by search text and verification tab
// @Summary List drivers
// @Description List drivers with search, verification status filter and pagination
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name, code, phone or email"
// @Param verification_status query string false "pending | verified | rejected"
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /drivers [get]
func (h *DriverHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	search := c.Query("search")

	status := domain.VerificationStatus(c.Query("verification_status"))
	if status != "" && !status.IsValid() {
		return response.BadRequest(c, "Invalid verification status filter")
	}

	drivers, total := h.driverService.List(search, status, params.Offset, params.Limit)

	summaries := make([]models.DriverSummary, len(drivers))
	for i := range drivers {
		summaries[i] = drivers[i].ToSummary()
	}

	return response.Success(c, "Drivers retrieved successfully", fiber.Map{
		"drivers": summaries,
		"counts":  h.driverService.Counts(),
		"meta":    pagination.GetMeta(params, total),
	})
}

// Get returns one driver with full details
// @Summary Get driver
// @Description Get a single driver by ID
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [get]
func (h *DriverHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	driver, err := h.driverService.GetByID(c.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDriverNotFound), errors.Is(err, gorm.ErrRecordNotFound):
			return response.NotFound(c, "Driver not found")
		default:
			return response.InternalServerError(c, "Failed to get driver")
		}
	}

	return response.Success(c, "Driver retrieved successfully", driver)
}

// Create registers a new driver
// @Summary Create driver
// @Description Register a new driver, starting pending verification
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body services.CreateDriverInput true "New driver"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers [post]
func (h *DriverHandler) Create(c *fiber.Ctx) error {
	var input services.CreateDriverInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	driver, err := h.driverService.Create(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Full name, phone, NIN and license number are required")
		case errors.Is(err, domain.ErrDriverAlreadyExists):
			return response.Conflict(c, "A driver with this phone number already exists")
		default:
			return response.InternalServerError(c, "Failed to create driver")
		}
	}

	return response.Created(c, "Driver created successfully", driver)
}

// Update edits a driver's details
// @Summary Update driver
// @Description Update driver contact and identity details
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param request body services.UpdateDriverInput true "Fields to update"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [put]
func (h *DriverHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	var input services.UpdateDriverInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	driver, err := h.driverService.Update(c.Context(), id, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDriverNotFound):
			return response.NotFound(c, "Driver not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "No updatable fields provided")
		default:
			return response.InternalServerError(c, "Failed to update driver")
		}
	}

	return response.Success(c, "Driver updated successfully", driver)
}

// Delete removes a driver
// @Summary Delete driver
// @Description Soft-delete a driver record (Admin only)
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id} [delete]
func (h *DriverHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	if err := h.driverService.Delete(c.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrDriverNotFound):
			return response.NotFound(c, "Driver not found")
		default:
			return response.InternalServerError(c, "Failed to delete driver")
		}
	}

	return response.Success(c, "Driver deleted successfully", nil)
}

// Dashboard returns the OCR processing overview
// @Summary OCR dashboard
// @Description Get OCR processing statistics across all drivers
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /drivers/ocr-dashboard [get]
func (h *DriverHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.driverService.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to get OCR dashboard")
	}

	return response.Success(c, "OCR dashboard retrieved successfully", fiber.Map{
		"stats":  stats,
		"counts": h.driverService.Counts(),
	})
}

// RefreshCache forces a full reload of the driver snapshot
// @Summary Refresh driver cache
// @Description Reload the in-memory driver snapshot from the database (Admin only)
// @Tags Drivers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /drivers/refresh-cache [post]
func (h *DriverHandler) RefreshCache(c *fiber.Ctx) error {
	if err := h.driverService.RefreshCache(c.Context()); err != nil {
		return response.InternalServerError(c, "Cache reload failed, previous snapshot kept")
	}
	return response.Success(c, "Driver cache reloaded", nil)
}

// parseID reads the :id path parameter
func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}
