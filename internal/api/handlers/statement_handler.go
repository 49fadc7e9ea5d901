package handlers

import (
	"path/filepath"
	"strings"

	"statement-analyzer/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type StatementHandler struct {
	statementService *service.StatementService
	logger           *zap.Logger
}

func NewStatementHandler(statementService *service.StatementService, logger *zap.Logger) *StatementHandler {
	return &StatementHandler{
		statementService: statementService,
		logger:           logger,
	}
}

// PreviewStatement godoc
// @Summary Analyze a statement without saving it
// @Description Normalize a CSV bank statement export, compute the analysis and render the narrative
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement export (.csv)"
// @Security Bearer
// @Success 200 {object} dto.PreviewResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/statements/preview [post]
func (h *StatementHandler) PreviewStatement(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}
	if !isCSV(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only CSV statements are supported",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	resp, err := h.statementService.Preview(src)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to analyze statement")
	}

	return c.JSON(resp)
}

// UploadStatement godoc
// @Summary Upload a bank statement
// @Description Normalize, analyze and store a CSV bank statement export
// @Tags statements
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Statement export (.csv)"
// @Security Bearer
// @Success 201 {object} dto.StatementResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/statements [post]
func (h *StatementHandler) UploadStatement(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "File is required",
		})
	}
	if !isCSV(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Only CSV statements are supported",
		})
	}

	src, err := file.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to open file",
		})
	}
	defer src.Close()

	doc, err := h.statementService.Upload(c.Context(), userID, file.Filename, src)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to upload statement")
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ListStatements godoc
// @Summary List user's statements
// @Tags statements
// @Produce json
// @Param limit query int false "Limit" default(20)
// @Param offset query int false "Offset" default(0)
// @Security Bearer
// @Success 200 {object} dto.ListStatementsResponse
// @Failure 401 {object} map[string]string
// @Router /api/v1/statements [get]
func (h *StatementHandler) ListStatements(c *fiber.Ctx) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Unauthorized",
		})
	}

	resp, err := h.statementService.List(c.Context(), userID, c.QueryInt("limit", 0), c.QueryInt("offset", 0))
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list statements")
	}

	return c.JSON(resp)
}

// GetStatement godoc
// @Summary Get a stored statement
// @Description Returns the analysis, narrative and records of a statement
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {object} dto.StatementDetailResponse
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/{id} [get]
func (h *StatementHandler) GetStatement(c *fiber.Ctx) error {
	userID, statementID, err := userAndPathID(c, "Invalid statement ID")
	if err != nil {
		return err
	}

	resp, err := h.statementService.Get(c.Context(), userID, statementID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to load statement")
	}

	return c.JSON(resp)
}

// CountTokens godoc
// @Summary Narrative size in BPE tokens
// @Tags statements
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {object} dto.TokenCountResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/{id}/tokens [get]
func (h *StatementHandler) CountTokens(c *fiber.Ctx) error {
	userID, statementID, err := userAndPathID(c, "Invalid statement ID")
	if err != nil {
		return err
	}

	resp, err := h.statementService.Tokens(c.Context(), userID, statementID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to count tokens")
	}

	return c.JSON(resp)
}

func userAndPathID(c *fiber.Ctx, invalidMsg string) (uuid.UUID, uuid.UUID, error) {
	userID, err := getUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, invalidMsg)
	}

	return userID, id, nil
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}
