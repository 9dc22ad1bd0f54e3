package handlers

import (
	"errors"

	"driverdesk/internal/adapters/persistence/models"
	"driverdesk/internal/core/domain"
	"driverdesk/internal/core/services"
	"driverdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// VerificationHandler handles verification decision endpoints
type VerificationHandler struct {
	verificationService *services.VerificationService
	authService         *services.AuthService
}

// NewVerificationHandler creates a new verification handler
func NewVerificationHandler(verificationService *services.VerificationService, authService *services.AuthService) *VerificationHandler {
	return &VerificationHandler{
		verificationService: verificationService,
		authService:         authService,
	}
}

// VerifyInput carries optional notes for a manual verification
type VerifyInput struct {
	VerificationNotes string `json:"verification_notes"`
}

// RejectInput carries the mandatory rejection reason. The legacy
// "reason" key is still accepted when "rejection_reason" is absent.
type RejectInput struct {
	RejectionReason string `json:"rejection_reason" validate:"required"`
	Reason          string `json:"reason"`
}

func (in RejectInput) reason() string {
	if in.RejectionReason != "" {
		return in.RejectionReason
	}
	return in.Reason
}

// OCRVerifyInput selects which identity fields the run checks
type OCRVerifyInput struct {
	VerificationType string `json:"verification_type"`
}

// OverrideInput carries the admin confirmation for a manual override
type OverrideInput struct {
	AdminPassword string `json:"admin_password" validate:"required"`
	AdminNotes    string `json:"admin_notes"`
}

// BulkActionInput selects drivers for a synchronous batch action
type BulkActionInput struct {
	Action    string `json:"action" validate:"required"`
	DriverIDs []uint `json:"driver_ids" validate:"required"`
	Reason    string `json:"reason"`
}

// Verify marks a pending driver as verified
// @Summary Verify driver
// @Description Move a pending driver to verified
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param request body VerifyInput false "Optional verification notes"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/{id}/verify [post]
func (h *VerificationHandler) Verify(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	// Body is optional
	var input VerifyInput
	_ = c.BodyParser(&input)

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, err := h.verificationService.Verify(c.Context(), id, input.VerificationNotes, actor)
	if err != nil {
		return h.mapError(c, err, "Failed to verify driver")
	}

	return response.Success(c, "Driver verified successfully", driver.ToSummary())
}

// Reject marks a pending driver as rejected
// @Summary Reject driver
// @Description Move a pending driver to rejected with a mandatory reason
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param request body RejectInput true "Rejection reason"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /drivers/{id}/reject [post]
func (h *VerificationHandler) Reject(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	var input RejectInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, err := h.verificationService.Reject(c.Context(), id, input.reason(), actor)
	if err != nil {
		return h.mapError(c, err, "Failed to reject driver")
	}

	return response.Success(c, "Driver rejected successfully", driver.ToSummary())
}

// Undo reverts the latest decision back to pending
// @Summary Undo verification decision
// @Description Revert a verify or reject back to pending while the undo window is open
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /drivers/{id}/undo-verification [post]
func (h *VerificationHandler) Undo(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, err := h.verificationService.Undo(c.Context(), id, actor)
	if err != nil {
		return h.mapError(c, err, "Failed to undo decision")
	}

	return response.Success(c, "Decision undone successfully", driver.ToSummary())
}

// OCRVerify runs the document checks for one driver
// @Summary OCR verify driver
// @Description Run OCR document checks and promote to verified on pass
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param request body OCRVerifyInput false "Verification type (nin, frsc or both)"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /drivers/{id}/ocr-verify [post]
func (h *VerificationHandler) OCRVerify(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	// Body is optional; an omitted type means both checks
	var input OCRVerifyInput
	_ = c.BodyParser(&input)

	vt := domain.VerifyBoth
	if input.VerificationType != "" {
		vt = domain.VerificationType(input.VerificationType)
		if !vt.IsValid() {
			return response.BadRequest(c, "Invalid verification type")
		}
	}

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, result, err := h.verificationService.OCRVerify(c.Context(), id, vt, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoDocuments):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Driver has no documents to process")
		case errors.Is(err, services.ErrExtractionFail):
			return response.Error(c, fiber.StatusUnprocessableEntity, "Document text extraction failed")
		default:
			return h.mapError(c, err, "OCR verification failed")
		}
	}

	return response.Success(c, "OCR verification completed", fiber.Map{
		"driver": driver.ToSummary(),
		"result": result,
	})
}

// OCROverride forces a driver to verified with admin confirmation
// @Summary Override OCR result
// @Description Force a pending or rejected driver to verified (Admin only, password confirmed)
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param request body OverrideInput true "Admin password confirmation"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /drivers/{id}/ocr-override [post]
func (h *VerificationHandler) OCROverride(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	var input OverrideInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	driver, err := h.verificationService.OCROverride(c.Context(), id, input.AdminPassword, input.AdminNotes, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrOverrideRequiresAdmin):
			return response.Forbidden(c, "Override requires an admin account")
		case errors.Is(err, services.ErrInvalidAdminPassword):
			return response.Forbidden(c, "Invalid admin password")
		default:
			return h.mapError(c, err, "Override failed")
		}
	}

	return response.Success(c, "Driver verification overridden", driver.ToSummary())
}

// BulkAction applies one action to a driver selection synchronously
// @Summary Bulk driver action
// @Description Apply verify, reject, activate or suspend to a selection of drivers
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body BulkActionInput true "Action and selection"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /drivers/bulk-action [post]
func (h *VerificationHandler) BulkAction(c *fiber.Ctx) error {
	var input BulkActionInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	actor, err := h.actor(c)
	if err != nil {
		return response.Unauthorized(c, "Unauthorized")
	}

	result, err := h.verificationService.BulkAction(c.Context(), input.Action, input.DriverIDs, input.Reason, actor)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptySelection):
			return response.BadRequest(c, "No drivers selected")
		case errors.Is(err, services.ErrReasonRequired):
			return response.BadRequest(c, "Rejection reason is required")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Unknown bulk action")
		default:
			return response.InternalServerError(c, "Bulk action failed")
		}
	}

	return response.Success(c, "Bulk action completed", result)
}

// History returns the verification audit trail for one driver
// @Summary Driver verification history
// @Description List all verification actions recorded for a driver, newest first
// @Tags Verification
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id}/history [get]
func (h *VerificationHandler) History(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	entries, err := h.verificationService.History(c.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Driver not found")
		}
		return response.InternalServerError(c, "Failed to get history")
	}

	return response.Success(c, "History retrieved successfully", entries)
}

// actor loads the authenticated staff user from the request context
func (h *VerificationHandler) actor(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		return nil, errors.New("missing user context")
	}
	return h.authService.GetUserByID(c.Context(), userID)
}

// mapError translates dispatcher errors into HTTP responses
func (h *VerificationHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, domain.ErrDriverNotFound):
		return response.NotFound(c, "Driver not found")
	case errors.Is(err, services.ErrConcurrentAction):
		return response.Conflict(c, "Another action is already running for this driver")
	case errors.Is(err, domain.ErrIllegalTransition):
		return response.Conflict(c, "Action not allowed from the driver's current status")
	case errors.Is(err, services.ErrReasonRequired):
		return response.BadRequest(c, "Rejection reason is required")
	case errors.Is(err, services.ErrNothingToUndo):
		return response.Conflict(c, "Driver has no decision to undo")
	case errors.Is(err, services.ErrUndoExpired):
		return response.Error(c, fiber.StatusGone, "Undo window has expired")
	default:
		return response.InternalServerError(c, fallback)
	}
}
