package handlers

import (
	"fmt"

	"statement-analyzer/internal/dto"
	"statement-analyzer/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// AskStatement godoc
// @Summary Ask the language model about a statement
// @Description Styles: default (requires question), summary, fraud_check, income_vs_expense, budget_advice
// @Tags reports
// @Accept json
// @Produce json
// @Param id path string true "Statement ID"
// @Param request body dto.AskRequest true "Analysis request"
// @Security Bearer
// @Success 201 {object} dto.ReportResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/statements/{id}/ask [post]
func (h *ReportHandler) AskStatement(c *fiber.Ctx) error {
	userID, statementID, err := userAndPathID(c, "Invalid statement ID")
	if err != nil {
		return err
	}

	var req dto.AskRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	resp, err := h.reportService.Ask(c.Context(), userID, statementID, &req)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to analyze statement")
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ListReports godoc
// @Summary List reports of a statement
// @Tags reports
// @Produce json
// @Param id path string true "Statement ID"
// @Security Bearer
// @Success 200 {array} dto.ReportResponse
// @Failure 404 {object} map[string]string
// @Router /api/v1/statements/{id}/reports [get]
func (h *ReportHandler) ListReports(c *fiber.Ctx) error {
	userID, statementID, err := userAndPathID(c, "Invalid statement ID")
	if err != nil {
		return err
	}

	resp, err := h.reportService.ListForStatement(c.Context(), userID, statementID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to list reports")
	}

	return c.JSON(resp)
}

// ExportReport godoc
// @Summary Download a report
// @Description PDF document with the question and the model's response
// @Tags reports
// @Produce application/pdf
// @Param id path string true "Report ID"
// @Security Bearer
// @Success 200 {file} file
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /api/v1/reports/{id}/export [get]
func (h *ReportHandler) ExportReport(c *fiber.Ctx) error {
	userID, reportID, err := userAndPathID(c, "Invalid report ID")
	if err != nil {
		return err
	}

	fileName, content, err := h.reportService.Export(c.Context(), userID, reportID)
	if err != nil {
		return respondError(c, h.logger, err, "Failed to export report")
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(content)
}
