package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statement-analyzer/internal/dto"
	"statement-analyzer/internal/models"
	"statement-analyzer/internal/repository"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reportTitle = "AI Financial Analysis Report"

var (
	ErrReportNotFound = errors.New("report not found")
	ErrExportFailed   = errors.New("report export failed")
)

type ReportService struct {
	statements StatementStore
	reports    ReportStore
	llm        *LLMService
	exportDir  string
	now        func() time.Time
	logger     *zap.Logger
}

func NewReportService(statements StatementStore, reports ReportStore, llm *LLMService, exportDir string, logger *zap.Logger) *ReportService {
	return &ReportService{
		statements: statements,
		reports:    reports,
		llm:        llm,
		exportDir:  exportDir,
		now:        time.Now,
		logger:     logger,
	}
}

// Ask sends the statement narrative to the language model and stores the answer.
func (s *ReportService) Ask(ctx context.Context, userID, statementID uuid.UUID, req *dto.AskRequest) (*dto.ReportResponse, error) {
	style := models.AnalysisStyle(strings.TrimSpace(req.Style))
	if style == "" {
		style = models.StyleDefault
	}
	if _, err := BuildPrompt(style, "", req.Question); err != nil {
		return nil, err
	}

	doc, err := ownedStatement(ctx, s.statements, userID, statementID)
	if err != nil {
		return nil, err
	}

	answer, err := s.llm.Ask(ctx, style, doc.Narrative, req.Question)
	if err != nil {
		return nil, err
	}

	question := ""
	if style == models.StyleDefault {
		question = strings.TrimSpace(req.Question)
	}
	rep := &models.Report{
		ID:          uuid.New(),
		StatementID: doc.ID,
		UserID:      userID,
		Style:       style,
		Question:    question,
		Answer:      sanitizeText(answer),
		CreatedAt:   s.now(),
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	resp := toReportResponse(rep)
	return &resp, nil
}

func (s *ReportService) ListForStatement(ctx context.Context, userID, statementID uuid.UUID) ([]dto.ReportResponse, error) {
	if _, err := ownedStatement(ctx, s.statements, userID, statementID); err != nil {
		return nil, err
	}

	reports, err := s.reports.ListByStatementID(ctx, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	out := make([]dto.ReportResponse, 0, len(reports))
	for _, rep := range reports {
		out = append(out, toReportResponse(rep))
	}
	return out, nil
}

// Export renders a stored report as a PDF document. When an export
// directory is configured the file is also written there.
func (s *ReportService) Export(ctx context.Context, userID, reportID uuid.UUID) (string, []byte, error) {
	rep, err := s.reports.GetByID(ctx, reportID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrReportNotFound
		}
		return "", nil, fmt.Errorf("failed to load report: %w", err)
	}
	if rep.UserID != userID {
		return "", nil, ErrForbidden
	}

	content, err := ExportReport(rep)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	fileName := fmt.Sprintf("financial-report-%s.pdf", rep.ID)

	if s.exportDir != "" {
		path := filepath.Join(s.exportDir, fileName)
		if err := os.MkdirAll(s.exportDir, 0o755); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return "", nil, fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
		s.logger.Info("Report exported", zap.String("report_id", rep.ID.String()), zap.String("path", path))
	}

	return fileName, content, nil
}

// ExportReport lays out the question and answer of a report as a single PDF:
// title, generation time, then Question and Response sections. Text is set in
// the core Helvetica font, so runes outside Windows-1252 are not preserved.
func ExportReport(rep *models.Report) ([]byte, error) {
	question := rep.Question
	if question == "" {
		question = fmt.Sprintf("%s analysis", strings.ReplaceAll(string(rep.Style), "_", " "))
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetCreationDate(rep.CreatedAt)
	doc.SetModificationDate(rep.CreatedAt)
	doc.SetTitle(reportTitle, true)
	doc.SetAutoPageBreak(true, 15)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont("Helvetica", "B", 20)
	doc.MultiCell(0, 10, tr(reportTitle), "", "L", false)
	doc.SetFont("Helvetica", "I", 9)
	doc.MultiCell(0, 6, tr("Generated: "+rep.CreatedAt.Format("2006-01-02 15:04:05")), "", "L", false)
	doc.Ln(4)

	section := func(heading, body string) {
		doc.SetFont("Helvetica", "B", 14)
		doc.MultiCell(0, 8, tr(heading), "", "L", false)
		doc.SetFont("Helvetica", "", 11)
		doc.MultiCell(0, 6, tr(body), "", "L", false)
		doc.Ln(4)
	}
	section("Question:", question)
	section("Response:", strings.TrimSpace(rep.Answer))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func toReportResponse(rep *models.Report) dto.ReportResponse {
	return dto.ReportResponse{
		ID:          rep.ID.String(),
		StatementID: rep.StatementID.String(),
		Style:       string(rep.Style),
		Question:    rep.Question,
		Answer:      rep.Answer,
		CreatedAt:   rep.CreatedAt.Format(time.RFC3339),
	}
}
