package handlers

import (
	"errors"

	"driverdesk/internal/core/domain"
	"driverdesk/internal/core/services"
	"driverdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// BulkHandler handles bulk OCR queue endpoints
type BulkHandler struct {
	bulkService *services.BulkService
}

// NewBulkHandler creates a new bulk handler
func NewBulkHandler(bulkService *services.BulkService) *BulkHandler {
	return &BulkHandler{
		bulkService: bulkService,
	}
}

// StartBulkInput selects drivers for a queued OCR run
type StartBulkInput struct {
	DriverIDs        []uint `json:"driver_ids" validate:"required"`
	VerificationType string `json:"verification_type"`
}

// Start seeds and launches a sequential OCR job
// @Summary Start bulk OCR job
// @Description Queue the selected drivers for sequential OCR verification
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StartBulkInput true "Driver selection"
// @Success 202 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/bulk-update-ocr-status [post]
func (h *BulkHandler) Start(c *fiber.Ctx) error {
	var input StartBulkInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	vt := domain.VerifyBoth
	if input.VerificationType != "" {
		vt = domain.VerificationType(input.VerificationType)
		if !vt.IsValid() {
			return response.BadRequest(c, "Invalid verification type")
		}
	}

	username, _ := c.Locals("username").(string)

	job, err := h.bulkService.Start(input.DriverIDs, vt, username)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySelection):
			return response.BadRequest(c, "No drivers selected")
		case errors.Is(err, services.ErrJobAlreadyRunning):
			return response.Conflict(c, "A bulk job is already running")
		default:
			return response.InternalServerError(c, "Failed to start bulk job")
		}
	}

	return response.Accepted(c, "Bulk OCR job started", job)
}

// Get returns the progress of one job
// @Summary Get bulk job
// @Description Get the progress and status of a bulk OCR job
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/bulk-jobs/{id} [get]
func (h *BulkHandler) Get(c *fiber.Ctx) error {
	job, err := h.bulkService.Get(c.Params("id"))
	if err != nil {
		return response.NotFound(c, "Bulk job not found")
	}

	return response.Success(c, "Bulk job retrieved successfully", job)
}

// Current returns the active job, if any
// @Summary Get active bulk job
// @Description Get the currently running or paused bulk OCR job
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Router /drivers/bulk-jobs/current [get]
func (h *BulkHandler) Current(c *fiber.Ctx) error {
	job := h.bulkService.Current()
	if job == nil {
		return response.Success(c, "No bulk job running", nil)
	}
	return response.Success(c, "Active bulk job retrieved", job)
}

// Pause suspends a running job
// @Summary Pause bulk job
// @Description Pause a running bulk OCR job after the in-flight item completes
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/bulk-jobs/{id}/pause [post]
func (h *BulkHandler) Pause(c *fiber.Ctx) error {
	job, err := h.bulkService.Pause(c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Bulk job paused", job)
}

// Resume continues a paused job
// @Summary Resume bulk job
// @Description Resume a paused bulk OCR job from where it stopped
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/bulk-jobs/{id}/resume [post]
func (h *BulkHandler) Resume(c *fiber.Ctx) error {
	job, err := h.bulkService.Resume(c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Bulk job resumed", job)
}

// Cancel stops a job and clears its remaining queue
// @Summary Cancel bulk job
// @Description Cancel a bulk OCR job; the in-flight item finishes, the rest is dropped
// @Tags Bulk
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/bulk-jobs/{id}/cancel [post]
func (h *BulkHandler) Cancel(c *fiber.Ctx) error {
	job, err := h.bulkService.Cancel(c.Params("id"))
	if err != nil {
		return h.mapError(c, err)
	}
	return response.Success(c, "Bulk job cancelled", job)
}

func (h *BulkHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrJobNotFound):
		return response.NotFound(c, "Bulk job not found")
	case errors.Is(err, services.ErrJobNotRunning):
		return response.Conflict(c, "Bulk job is not running")
	case errors.Is(err, services.ErrJobNotPaused):
		return response.Conflict(c, "Bulk job is not paused")
	case errors.Is(err, services.ErrJobFinished):
		return response.Conflict(c, "Bulk job has already finished")
	default:
		return response.InternalServerError(c, "Bulk job operation failed")
	}
}
