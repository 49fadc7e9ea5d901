package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statement-analyzer/internal/dto"
	"statement-analyzer/internal/models"
	"statement-analyzer/internal/repository"
	"statement-analyzer/internal/service/mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reportFixture struct {
	svc        *ReportService
	statements *mocks.MockStatementStore
	reports    *mocks.MockReportStore
	completer  *mocks.MockCompleter
}

func newReportFixture(t *testing.T, exportDir string) reportFixture {
	ctrl := gomock.NewController(t)
	statements := mocks.NewMockStatementStore(ctrl)
	reports := mocks.NewMockReportStore(ctrl)
	completer := mocks.NewMockCompleter(ctrl)
	svc := NewReportService(statements, reports, NewLLMService(completer, zap.NewNop()), exportDir, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return reportFixture{svc: svc, statements: statements, reports: reports, completer: completer}
}

func TestReportService_Ask(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stmtID := uuid.New()
	doc := &models.StatementDocument{ID: stmtID, UserID: owner, Narrative: "Bank Statement Analysis"}

	t.Run("default style stores question and answer", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.statements.EXPECT().GetByID(ctx, stmtID).Return(doc, nil)
		f.completer.EXPECT().Complete(ctx, gomock.Any(), gomock.Any()).Return("Food delivery.", nil)
		f.reports.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(func(_ context.Context, rep *models.Report) error {
			assert.Equal(t, models.StyleDefault, rep.Style)
			assert.Equal(t, "Where did money go?", rep.Question)
			assert.Equal(t, owner, rep.UserID)
			return nil
		})

		resp, err := f.svc.Ask(ctx, owner, stmtID, &dto.AskRequest{Question: " Where did money go? "})
		require.NoError(t, err)
		assert.Equal(t, "Food delivery.", resp.Answer)
		assert.Equal(t, stmtID.String(), resp.StatementID)
	})

	t.Run("non default style drops question", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.statements.EXPECT().GetByID(ctx, stmtID).Return(doc, nil)
		f.completer.EXPECT().Complete(ctx, gomock.Any(), gomock.Any()).Return("Summary.", nil)
		f.reports.EXPECT().Create(ctx, gomock.Any()).Return(nil)

		resp, err := f.svc.Ask(ctx, owner, stmtID, &dto.AskRequest{Style: "summary", Question: "ignored"})
		require.NoError(t, err)
		assert.Empty(t, resp.Question)
		assert.Equal(t, "summary", resp.Style)
	})

	t.Run("validation happens before lookup", func(t *testing.T) {
		f := newReportFixture(t, "")

		_, err := f.svc.Ask(ctx, owner, stmtID, &dto.AskRequest{Style: "default"})
		assert.True(t, errors.Is(err, ErrQuestionRequired))

		_, err = f.svc.Ask(ctx, owner, stmtID, &dto.AskRequest{Style: "astrology"})
		assert.True(t, errors.Is(err, ErrUnknownStyle))
	})

	t.Run("model failure stores nothing", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.statements.EXPECT().GetByID(ctx, stmtID).Return(doc, nil)
		f.completer.EXPECT().Complete(ctx, gomock.Any(), gomock.Any()).Return("", errors.New("503"))

		_, err := f.svc.Ask(ctx, owner, stmtID, &dto.AskRequest{Style: "summary"})
		assert.True(t, errors.Is(err, ErrLLMUnavailable))
	})

	t.Run("foreign statement", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.statements.EXPECT().GetByID(ctx, stmtID).Return(doc, nil)

		_, err := f.svc.Ask(ctx, uuid.New(), stmtID, &dto.AskRequest{Style: "summary"})
		assert.Equal(t, ErrForbidden, err)
	})
}

func TestReportService_ListForStatement(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	stmtID := uuid.New()

	f := newReportFixture(t, "")
	f.statements.EXPECT().GetByID(ctx, stmtID).Return(&models.StatementDocument{ID: stmtID, UserID: owner}, nil)
	f.reports.EXPECT().ListByStatementID(ctx, stmtID).Return([]*models.Report{
		{ID: uuid.New(), StatementID: stmtID, Style: models.StyleSummary, Answer: "a"},
		{ID: uuid.New(), StatementID: stmtID, Style: models.StyleFraudCheck, Answer: "b"},
	}, nil)

	got, err := f.svc.ListForStatement(ctx, owner, stmtID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "fraud_check", got[1].Style)
}

func TestReportService_Export(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()
	rep := &models.Report{
		ID:        uuid.New(),
		UserID:    owner,
		Style:     models.StyleDefault,
		Question:  "Where did money go?",
		Answer:    "Food delivery.\n",
		CreatedAt: fixedNow,
	}

	t.Run("writes to export dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "reports")
		f := newReportFixture(t, dir)
		f.reports.EXPECT().GetByID(ctx, rep.ID).Return(rep, nil)

		name, content, err := f.svc.Export(ctx, owner, rep.ID)
		require.NoError(t, err)
		assert.Equal(t, "financial-report-"+rep.ID.String()+".pdf", name)

		onDisk, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, content, onDisk)
	})

	t.Run("not found", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.reports.EXPECT().GetByID(ctx, rep.ID).Return(nil, repository.ErrNotFound)

		_, _, err := f.svc.Export(ctx, owner, rep.ID)
		assert.Equal(t, ErrReportNotFound, err)
	})

	t.Run("other user", func(t *testing.T) {
		f := newReportFixture(t, "")
		f.reports.EXPECT().GetByID(ctx, rep.ID).Return(rep, nil)

		_, _, err := f.svc.Export(ctx, uuid.New(), rep.ID)
		assert.Equal(t, ErrForbidden, err)
	})
}

func pdfText(t *testing.T, content []byte) string {
	t.Helper()
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	require.NoError(t, err)
	require.Equal(t, 1, r.NumPage())

	plain, err := r.GetPlainText()
	require.NoError(t, err)
	text, err := io.ReadAll(plain)
	require.NoError(t, err)
	return string(text)
}

func TestExportReport(t *testing.T) {
	content, err := ExportReport(&models.Report{
		Style:     models.StyleDefault,
		Question:  "Where did money go?",
		Answer:    "  Mostly rent.  ",
		CreatedAt: fixedNow,
	})
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(content, []byte("%PDF-")))

	text := pdfText(t, content)
	order := []string{"AI Financial Analysis Report", "Generated: 2024-02-01 10:00:00", "Question:", "Where did money go?", "Response:", "Mostly rent."}
	last := -1
	for _, want := range order {
		idx := strings.Index(text, want)
		require.NotEqual(t, -1, idx, "missing %q in %q", want, text)
		assert.Greater(t, idx, last, "%q out of order", want)
		last = idx
	}
}

func TestExportReport_StyleAsQuestion(t *testing.T) {
	content, err := ExportReport(&models.Report{Style: models.StyleIncomeVsExpense, Answer: "x", CreatedAt: fixedNow})
	require.NoError(t, err)
	assert.Contains(t, pdfText(t, content), "income vs expense analysis")
}
