package handlers

import (
	"errors"

	"driverdesk/internal/core/domain"
	"driverdesk/internal/core/services"
	"driverdesk/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// DocumentHandler handles driver document endpoints
type DocumentHandler struct {
	documentService *services.DocumentService
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// Upload stores one identity document for a driver
// @Summary Upload driver document
// @Description Upload an identity document (multipart: file + doc_type)
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param file formData file true "Document file (pdf, jpg, png, tiff)"
// @Param doc_type formData string true "nin_slip | drivers_license | passport_photo | vehicle_registration | other"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 413 {object} response.Response
// @Router /drivers/{id}/files/upload [post]
func (h *DocumentHandler) Upload(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "Missing file")
	}

	docType := domain.DocType(c.FormValue("doc_type"))
	userID, _ := c.Locals("userID").(uint)

	doc, err := h.documentService.Upload(c.Context(), id, docType, file, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnsupportedDocType):
			return response.BadRequest(c, "Unsupported document type")
		case errors.Is(err, domain.ErrDriverNotFound):
			return response.NotFound(c, "Driver not found")
		case errors.Is(err, services.ErrFileTooLarge):
			return response.Error(c, fiber.StatusRequestEntityTooLarge, "File exceeds the 10MB limit")
		case errors.Is(err, services.ErrUnsupportedFile):
			return response.BadRequest(c, "Only PDF, JPEG, PNG and TIFF files are accepted")
		default:
			return response.InternalServerError(c, "Failed to upload document")
		}
	}

	return response.Created(c, "Document uploaded successfully", doc)
}

// List returns all documents for one driver
// @Summary List driver documents
// @Description List the uploaded documents for a driver
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id}/files [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	docs, err := h.documentService.List(c.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrDriverNotFound) {
			return response.NotFound(c, "Driver not found")
		}
		return response.InternalServerError(c, "Failed to list documents")
	}

	return response.Success(c, "Documents retrieved successfully", docs)
}

// Delete removes one document
// @Summary Delete driver document
// @Description Delete a document record and its stored file
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Driver ID"
// @Param docId path string true "Document ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /drivers/{id}/files/{docId} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return response.BadRequest(c, "Invalid driver ID")
	}

	if err := h.documentService.Delete(c.Context(), id, c.Params("docId")); err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			return response.NotFound(c, "Document not found")
		}
		return response.InternalServerError(c, "Failed to delete document")
	}

	return response.Success(c, "Document deleted successfully", nil)
}
