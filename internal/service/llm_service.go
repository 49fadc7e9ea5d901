package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"statement-analyzer/internal/models"
	"statement-analyzer/pkg/config"

	"github.com/Role1776/gigago"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var (
	ErrUnknownStyle     = errors.New("unknown analysis style")
	ErrQuestionRequired = errors.New("question is required for the default style")
	ErrLLMUnavailable   = errors.New("language model request failed")
)

const systemInstruction = `You are a careful financial analyst working from a pre-computed bank statement analysis.
Only use figures present in the data. If the data does not support an answer, say so.`

var promptTemplates = map[models.AnalysisStyle]string{
	models.StyleSummary: `You are a senior bank analyst with expertise in statistical data interpretation.

Given the following transaction data:

%s

Generate a comprehensive statistical summary including:

1. Account Overview: total transactions, analysis period and duration, opening and closing balance, net change.
2. Financial Statistics: total credits and debits with counts, average transaction amount, largest credit and debit with date and description.
3. Monthly Trends: average monthly income and expenses, monthly surplus or deficit, busiest transaction days.
4. Key Observations: 3-5 bullet points on the most significant patterns, anomalies or notable transactions.

Format your response with clear headings and use precise figures. Provide context for any unusual patterns.`,

	models.StyleFraudCheck: `You are a forensic accounting specialist.

Analyze these transactions for potential fraud:

%s

Conduct the following statistical checks:

1. Anomaly Detection: transactions more than 3 standard deviations from the mean, unusual timing or locations.
2. Pattern Analysis: duplicate amounts, rapid sequences of transactions, round-number transactions.
3. Risk Assessment: for each suspicious transaction give date, amount, merchant, anomaly type and a risk score (1-5).

Format findings as a risk matrix with supporting statistics.`,

	models.StyleIncomeVsExpense: `You are a wealth management advisor.

Analyze this financial data:

%s

Provide a statistical comparison:

1. Income Analysis: total income, primary sources, frequency and stability.
2. Expense Analysis: fixed vs variable, essential vs discretionary, volatility.
3. Savings Capacity: monthly savings rate, projected annual savings, break-even analysis.

Include trends and the significance of any changes.`,

	models.StyleBudgetAdvice: `You are a personal finance optimization specialist.

Based on:

%s

Generate data-driven recommendations:

1. Current State Analysis: spending efficiency score (1-100), worst and best performing categories.
2. Optimization Opportunities: top 3 potential savings areas, estimated monthly savings, recommended budget caps.
3. Action Plan: immediate actions, medium-term adjustments, long-term strategy.

Support all recommendations with statistical evidence.`,

	models.StyleDefault: `You are an AI financial analyst with statistical modeling capabilities.

Given this data:

%s

Regarding the question: "%s"

Provide a response that includes:
1. Direct answer
2. Supporting statistics
3. Data visualization suggestions
4. Confidence level in the analysis
5. Relevant trends/patterns
6. Any data limitations

Structure your response professionally with clear section headings.`,
}

// BuildPrompt fills the template for style with the narrative. Only the
// default style uses the question, and it must not be blank.
func BuildPrompt(style models.AnalysisStyle, narrative, question string) (string, error) {
	if style == "" {
		style = models.StyleDefault
	}
	if !style.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStyle, style)
	}

	tmpl := promptTemplates[style]
	if style != models.StyleDefault {
		return fmt.Sprintf(tmpl, narrative), nil
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrQuestionRequired
	}
	return fmt.Sprintf(tmpl, narrative, question), nil
}

type LLMService struct {
	completer Completer
	logger    *zap.Logger
}

func NewLLMService(completer Completer, logger *zap.Logger) *LLMService {
	return &LLMService{
		completer: completer,
		logger:    logger,
	}
}

// Ask runs one styled prompt over a rendered narrative.
func (s *LLMService) Ask(ctx context.Context, style models.AnalysisStyle, narrative, question string) (string, error) {
	prompt, err := BuildPrompt(style, narrative, question)
	if err != nil {
		return "", err
	}

	started := time.Now()
	answer, err := s.completer.Complete(ctx, systemInstruction, prompt)
	if err != nil {
		s.logger.Error("LLM completion failed",
			zap.String("style", string(style)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", fmt.Errorf("%w: empty response", ErrLLMUnavailable)
	}

	s.logger.Info("LLM completion finished",
		zap.String("style", string(style)),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("answer_chars", len(answer)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return answer, nil
}

func (s *LLMService) Close() error {
	return s.completer.Close()
}

// NewCompleter builds the completer selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderGigaChat:
		return NewGigaChatCompleter(ctx, cfg, logger)
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}

type GigaChatCompleter struct {
	client      *gigago.Client
	modelName   string
	temperature float64
}

func NewGigaChatCompleter(ctx context.Context, cfg *config.LLMConfig, logger *zap.Logger) (*GigaChatCompleter, error) {
	opts := []gigago.Option{
		gigago.WithCustomScope(cfg.GigaChat.Scope),
	}
	if cfg.GigaChat.InsecureSkipVerify {
		opts = append(opts, gigago.WithCustomInsecureSkipVerify(true))
		logger.Warn("GigaChat TLS certificate verification is disabled")
	}

	client, err := gigago.NewClient(ctx, cfg.GigaChat.APIKey, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GigaChat client: %w", err)
	}

	return &GigaChatCompleter{
		client:      client,
		modelName:   cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (c *GigaChatCompleter) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	// a fresh model per call keeps SystemInstruction from leaking between requests
	model := c.client.GenerativeModel(c.modelName)
	model.SystemInstruction = systemInstruction
	setFloat(&model.Temperature, c.temperature)

	resp, err := model.Generate(ctx, []gigago.Message{
		{Role: gigago.RoleUser, Content: prompt},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GigaChat")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *GigaChatCompleter) Close() error {
	if c.client != nil {
		c.client.Close()
	}
	return nil
}

type GeminiCompleter struct {
	client      *genai.Client
	modelName   string
	temperature float32
}

func NewGeminiCompleter(ctx context.Context, cfg *config.LLMConfig) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiCompleter{
		client:      client,
		modelName:   cfg.Model,
		temperature: float32(cfg.Temperature),
	}, nil
}

func (c *GeminiCompleter) Complete(ctx context.Context, systemInstruction, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(c.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	return resp.Text(), nil
}

func (c *GeminiCompleter) Close() error {
	return nil
}

func setFloat[T ~float32 | ~float64](dst *T, v float64) {
	*dst = T(v)
}
