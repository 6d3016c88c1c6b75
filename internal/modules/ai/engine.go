package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wikisum/core/internal/config"
	"github.com/wikisum/core/internal/pkg/textutil"
)

// ErrGenerationFailure marks unrecoverable LLM failures after every model and
// retry has been exhausted.
var ErrGenerationFailure = errors.New("llm generation failed")

// Summary origins.
const (
	OriginLLM         = "llm"
	OriginLLMFallback = "llm_fallback"
	OriginExtractive  = "fallback"
)

// Translation origins.
const (
	TranslationLLM         = "llm"
	TranslationLLMFallback = "llm_fallback"
	TranslationSkipped     = "skipped"
	TranslationDisabled    = "disabled"
	TranslationUnavailable = "unavailable"
	TranslationError       = "error"
)

const (
	// Articles at or above this word count are summarized map-reduce style.
	mapReduceThresholdWords = 1200
	chunkSizeWords          = 800
	chunkTargetMinWords     = 60
	chunkTargetMaxWords     = 200
	extractiveSentences     = 5
)

type callFunc func(ctx context.Context, cfg config.LLMConfig, modelID, systemPrompt, prompt string) (string, error)

// Engine orchestrates summary generation and translation: model selection,
// retries, fallback model, JSON extraction and the extractive degrade path.
type Engine struct {
	cfg    config.LLMConfig
	logger *zap.Logger
	call   callFunc
	policy retryPolicy
}

func NewEngine(cfg config.LLMConfig, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		logger: logger,
		call:   generateText,
		policy: retryPolicy{maxRetries: cfg.MaxRetries, backoff: cfg.RetryBackoff},
	}
}

type retryPolicy struct {
	maxRetries int
	backoff    time.Duration
}

// delay computes the jittered exponential backoff before retry n (1-based).
func (p retryPolicy) delay(retry int) time.Duration {
	base := p.backoff
	if base <= 0 {
		base = time.Second
	}
	d := float64(base) * float64(int64(1)<<uint(retry-1))
	return time.Duration(d * (0.8 + rand.Float64()*0.4))
}

// Summarize produces a summary of articleText targeting wordCount words.
// It never fails outright: when every model attempt is exhausted, or when no
// usable credential is configured, it degrades to an extractive summary.
func (e *Engine) Summarize(ctx context.Context, articleText string, wordCount int) (summary string, origin string) {
	if !e.cfg.CredentialUsable() {
		e.logger.Warn("no usable llm credential, using extractive summary")
		return e.extractiveSummary(articleText, wordCount), OriginExtractive
	}

	var raw string
	var usedFallback bool
	var err error
	if textutil.WordCount(articleText) >= mapReduceThresholdWords {
		raw, usedFallback, err = e.summarizeMapReduce(ctx, articleText, wordCount)
	} else {
		systemPrompt, prompt := buildSummaryPrompt(articleText, wordCount)
		raw, usedFallback, err = e.invoke(ctx, systemPrompt, prompt)
	}
	if err != nil {
		e.logger.Error("summary generation failed, using extractive summary", zap.Error(err))
		return e.extractiveSummary(articleText, wordCount), OriginExtractive
	}

	text := e.extractSummaryPayload(raw)
	text = textutil.TruncateToWordLimit(text, wordCount)
	if usedFallback {
		return text, OriginLLMFallback
	}
	return text, OriginLLM
}

// Translate renders an English summary into Portuguese, trimmed to wordCount
// words. The returned origin reports how the text was produced, or why it was
// not. Summaries already in Portuguese are echoed back unchanged.
func (e *Engine) Translate(ctx context.Context, summary string, wordCount int) (string, string, error) {
	if LooksPortuguese(summary) {
		return summary, TranslationSkipped, nil
	}
	if !e.cfg.CredentialUsable() {
		return "", TranslationUnavailable, nil
	}

	systemPrompt, prompt := buildTranslatePrompt(summary)
	raw, usedFallback, err := e.invoke(ctx, systemPrompt, prompt)
	if err != nil {
		return "", TranslationError, fmt.Errorf("%w: translation: %v", ErrGenerationFailure, err)
	}

	text := e.extractTranslationPayload(raw)
	if strings.TrimSpace(text) == "" {
		return "", TranslationError, fmt.Errorf("%w: translation produced no text", ErrGenerationFailure)
	}
	text = textutil.TruncateToWordLimit(text, wordCount)
	if usedFallback {
		return text, TranslationLLMFallback, nil
	}
	return text, TranslationLLM, nil
}

// summarizeMapReduce splits long articles into chunks, summarizes each, then
// reduces the partial summaries into the final one.
func (e *Engine) summarizeMapReduce(ctx context.Context, articleText string, wordCount int) (string, bool, error) {
	chunks := textutil.SplitIntoChunks(articleText, chunkSizeWords)
	if len(chunks) <= 1 {
		systemPrompt, prompt := buildSummaryPrompt(articleText, wordCount)
		return e.invoke(ctx, systemPrompt, prompt)
	}

	target := wordCount * 3 / (2 * len(chunks)) // 1.5x the final budget, split across chunks
	if target < chunkTargetMinWords {
		target = chunkTargetMinWords
	}
	if target > chunkTargetMaxWords {
		target = chunkTargetMaxWords
	}

	usedFallback := false
	parts := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		systemPrompt, prompt := buildChunkPrompt(chunk, i+1, len(chunks), target)
		raw, fb, err := e.invoke(ctx, systemPrompt, prompt)
		if err != nil {
			return "", false, fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		usedFallback = usedFallback || fb
		parts = append(parts, fmt.Sprintf("Part %d of %d: %s", i+1, len(chunks), e.extractSummaryPayload(raw)))
	}

	systemPrompt, prompt := buildReducePrompt(strings.Join(parts, "\n\n"), wordCount)
	raw, fb, err := e.invoke(ctx, systemPrompt, prompt)
	if err != nil {
		return "", false, fmt.Errorf("reduce: %w", err)
	}
	return raw, usedFallback || fb, nil
}

// invoke runs one prompt through the primary model with retries, then through
// the fallback model with retries. The bool reports whether the fallback model
// produced the result.
func (e *Engine) invoke(ctx context.Context, systemPrompt, prompt string) (string, bool, error) {
	raw, err := e.invokeModel(ctx, e.cfg.Model, systemPrompt, prompt)
	if err == nil {
		return raw, false, nil
	}

	fallback := e.cfg.FallbackModelValue()
	if fallback == "" {
		return "", false, fmt.Errorf("%w: model %s: %v", ErrGenerationFailure, e.cfg.Model, err)
	}

	e.logger.Warn("primary model exhausted, trying fallback model",
		zap.String("model", e.cfg.Model),
		zap.String("fallback_model", fallback),
		zap.Error(err),
	)
	raw, fbErr := e.invokeModel(ctx, fallback, systemPrompt, prompt)
	if fbErr != nil {
		return "", false, fmt.Errorf("%w: model %s: %v; fallback %s: %v", ErrGenerationFailure, e.cfg.Model, err, fallback, fbErr)
	}
	return raw, true, nil
}

func (e *Engine) invokeModel(ctx context.Context, modelID, systemPrompt, prompt string) (string, error) {
	attempts := e.policy.maxRetries + 1
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		raw, err := e.call(ctx, e.cfg, modelID, systemPrompt, prompt)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(e.policy.delay(attempt)):
		}
	}
	return "", lastErr
}

// extractSummaryPayload parses the model's JSON envelope. Responses that are
// not valid JSON degrade to the raw text rather than failing the request.
func (e *Engine) extractSummaryPayload(raw string) string {
	var payload struct {
		Summary string `json:"summary"`
	}
	if err := unmarshalLLMJSON(raw, &payload); err == nil && strings.TrimSpace(payload.Summary) != "" {
		return strings.TrimSpace(payload.Summary)
	}
	e.logger.Warn("llm response was not the expected JSON, using raw text")
	return stripCodeFences(raw)
}

func (e *Engine) extractTranslationPayload(raw string) string {
	var payload struct {
		Translation string `json:"translation"`
	}
	if err := unmarshalLLMJSON(raw, &payload); err == nil && strings.TrimSpace(payload.Translation) != "" {
		return strings.TrimSpace(payload.Translation)
	}
	e.logger.Warn("llm translation was not the expected JSON, using raw text")
	return stripCodeFences(raw)
}

// extractiveSummary takes the first sentences of the article as a last-resort
// summary when the LLM is unreachable or unconfigured.
func (e *Engine) extractiveSummary(articleText string, wordCount int) string {
	sentences := textutil.SplitSentences(articleText)
	if len(sentences) > extractiveSentences {
		sentences = sentences[:extractiveSentences]
	}
	return textutil.TruncateToWordLimit(strings.Join(sentences, " "), wordCount)
}

func unmarshalLLMJSON(raw string, out interface{}) error {
	cleaned := stripCodeFences(raw)

	if err := json.Unmarshal([]byte(cleaned), out); err == nil {
		return nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), out); err == nil {
			return nil
		}
	}

	return errors.New("invalid JSON response from llm")
}

func stripCodeFences(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```JSON")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	return strings.TrimSpace(cleaned)
}
