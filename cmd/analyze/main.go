package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"statement-analyzer/internal/analysis"
	"statement-analyzer/internal/models"
	"statement-analyzer/internal/service"
	"statement-analyzer/internal/statement"
	"statement-analyzer/pkg/config"
	"statement-analyzer/pkg/logger"

	"go.uber.org/zap"
)

type options struct {
	file     string
	dir      string
	style    string
	question string
	tokens   bool
	force    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.file, "file", "", "statement export (.csv) to analyze")
	flag.StringVar(&opts.dir, "dir", "", "directory of statement exports to analyze in batch")
	flag.StringVar(&opts.style, "style", "", "ask the language model using this analysis style (default, summary, fraud_check, income_vs_expense, budget_advice)")
	flag.StringVar(&opts.question, "question", "", "question for the default style")
	flag.BoolVar(&opts.tokens, "tokens", false, "print the token count of the narrative")
	flag.BoolVar(&opts.force, "force", false, "reprocess files even if unchanged since the last batch run")
	flag.Parse()

	if (opts.file == "") == (opts.dir == "") {
		fmt.Fprintln(os.Stderr, "exactly one of -file or -dir is required")
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	render := analysis.RenderOptions{Currency: cfg.Report.Currency}

	var llmService *service.LLMService
	if opts.style != "" {
		if _, err := service.BuildPrompt(models.AnalysisStyle(opts.style), "", opts.question); err != nil {
			log.Fatalf("Invalid analysis request: %v", err)
		}
		if err := cfg.Validate(); err != nil {
			log.Fatalf("Invalid config: %v", err)
		}
		completer, err := service.NewCompleter(ctx, &cfg.LLM, logger.Named("llm"))
		if err != nil {
			appLogger.Fatal("Failed to initialize LLM client", zap.Error(err))
		}
		llmService = service.NewLLMService(completer, logger.Named("llm"))
		defer llmService.Close()
	}

	r := &runner{opts: opts, render: render, llm: llmService, out: os.Stdout, logger: appLogger}

	if opts.file != "" {
		if err := r.analyzeFile(ctx, opts.file); err != nil {
			appLogger.Fatal("Failed to analyze statement", zap.String("path", opts.file), zap.Error(err))
		}
		return
	}

	cacheFile := filepath.Join(opts.dir, ".analyze_cache.json")
	if err := r.analyzeDir(ctx, opts.dir, cacheFile); err != nil {
		appLogger.Fatal("Batch analysis failed", zap.Error(err))
	}
}

type runner struct {
	opts   options
	render analysis.RenderOptions
	llm    *service.LLMService
	out    io.Writer
	logger *zap.Logger
	now    func() time.Time
}

func (r *runner) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}

// narrate parses, analyzes and renders one export.
func (r *runner) narrate(path string) (string, *models.Statement, error) {
	stmt, err := statement.ParseFile(path)
	if err != nil {
		return "", nil, err
	}
	if stmt.DroppedRows > 0 {
		r.logger.Warn("Dropped rows with unparseable dates",
			zap.String("path", path),
			zap.Int("dropped_rows", stmt.DroppedRows),
		)
	}

	a, err := analysis.AnalyzeAt(stmt, r.clock())
	if err != nil {
		return "", nil, err
	}
	return analysis.Render(a, stmt, r.render), stmt, nil
}

func (r *runner) analyzeFile(ctx context.Context, path string) error {
	narrative, _, err := r.narrate(path)
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out, narrative)
	return r.followUp(ctx, narrative)
}

func (r *runner) followUp(ctx context.Context, narrative string) error {
	if r.opts.tokens {
		count, err := service.CountTokens(narrative)
		if err != nil {
			return err
		}
		fmt.Fprintf(r.out, "\nTokens (%s): %d, %d characters\n", service.TokenEncoding, count.Tokens, count.Chars)
	}
	if r.llm == nil {
		return nil
	}

	answer, err := r.llm.Ask(ctx, models.AnalysisStyle(r.opts.style), narrative, r.opts.question)
	if err != nil {
		return err
	}
	fmt.Fprintf(r.out, "\n%s\n", answer)
	return nil
}

// analyzeDir writes <name>.analysis.txt next to every export in dir, skipping
// exports whose content and narrative file are unchanged since the last run.
func (r *runner) analyzeDir(ctx context.Context, dir, cacheFile string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	cache, err := readBatchCache(cacheFile)
	if err != nil {
		r.logger.Warn("Batch cache unreadable, analyzing every export", zap.Error(err))
		cache = newBatchCache()
	}

	analyzed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		sum, err := sha256File(path)
		if err != nil {
			r.logger.Warn("Failed to hash export, analyzing anyway", zap.String("path", path), zap.Error(err))
		}

		if cached, ok := cache.fresh(path, sum); ok && !r.opts.force {
			r.logger.Info("Statement unchanged, skipping",
				zap.String("path", path),
				zap.Int("transactions", cached.Transactions),
				zap.Time("analyzed_at", cached.AnalyzedAt),
			)
			continue
		}

		narrative, stmt, err := r.narrate(path)
		if err != nil {
			r.logger.Error("Failed to analyze statement", zap.String("path", path), zap.Error(err))
			delete(cache.Exports, path)
			continue
		}

		outPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".analysis.txt"
		if err := os.WriteFile(outPath, []byte(narrative+"\n"), 0644); err != nil {
			r.logger.Error("Failed to write narrative", zap.String("path", outPath), zap.Error(err))
			continue
		}

		if err := r.followUp(ctx, narrative); err != nil {
			r.logger.Error("Failed to ask language model", zap.String("path", path), zap.Error(err))
		}

		cache.Exports[path] = analyzedExport{
			SHA256:       sum,
			Narrative:    outPath,
			Transactions: len(stmt.Transactions),
			DroppedRows:  stmt.DroppedRows,
			AnalyzedAt:   r.clock(),
		}
		analyzed++
		r.logger.Info("Statement analyzed",
			zap.String("path", path),
			zap.String("output", outPath),
			zap.Int("transactions", len(stmt.Transactions)),
		)
	}

	if err := cache.write(cacheFile); err != nil {
		r.logger.Warn("Failed to save batch cache", zap.Error(err))
	}
	r.logger.Info("Batch analysis completed", zap.Int("analyzed", analyzed))
	return nil
}
