package summary

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/wikisum/core/internal/config"
	"github.com/wikisum/core/internal/models"
	"github.com/wikisum/core/internal/modules/ai"
	"github.com/wikisum/core/internal/modules/wiki"
)

// Sources reported to clients.
const (
	SourceGenerated = "generated"
	SourceCache     = "cache"
)

// ArticleFetcher retrieves the text of a Wikipedia article.
type ArticleFetcher interface {
	FetchArticle(ctx context.Context, url string) (string, error)
}

// Engine generates summaries and translations.
type Engine interface {
	Summarize(ctx context.Context, articleText string, wordCount int) (summary string, origin string)
	Translate(ctx context.Context, summary string, wordCount int) (text string, origin string, err error)
}

// Service implements the summarize-and-cache flow.
type Service struct {
	repo    *Repository
	fetcher ArticleFetcher
	engine  Engine
	cfg     config.SummaryConfig
	logger  *zap.Logger
}

func NewService(repo *Repository, fetcher ArticleFetcher, engine Engine, cfg config.SummaryConfig, logger *zap.Logger) *Service {
	return &Service{repo: repo, fetcher: fetcher, engine: engine, cfg: cfg, logger: logger}
}

// GetOrCreate returns the cached summary for (url, wordCount) or generates,
// translates and stores a new one. The second return value reports whether
// the summary came from the cache or was generated by this call.
func (s *Service) GetOrCreate(ctx context.Context, rawURL string, wordCount int) (*models.SummaryModel, string, error) {
	url, err := wiki.NormalizeURL(rawURL)
	if err != nil {
		return nil, "", err
	}
	if wordCount <= 0 {
		return nil, "", fmt.Errorf("%w: word_count must be positive", wiki.ErrInvalidInput)
	}

	existing, err := s.repo.Find(url, wordCount)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		s.maybeRepairTranslation(ctx, existing)
		return existing, SourceCache, nil
	}

	articleText, err := s.fetcher.FetchArticle(ctx, url)
	if err != nil {
		return nil, "", err
	}

	summaryText, summaryOrigin := s.engine.Summarize(ctx, articleText, wordCount)
	ptText, ptOrigin := s.translate(ctx, summaryText, wordCount)

	model := &models.SummaryModel{
		URL:             url,
		WordCount:       wordCount,
		Summary:         summaryText,
		SummaryOrigin:   summaryOrigin,
		SummaryPt:       ptText,
		SummaryPtOrigin: ptOrigin,
	}
	stored, isNew, err := s.repo.Insert(model)
	if err != nil {
		return nil, "", err
	}
	if !isNew {
		// A concurrent request won the insert race; serve its row.
		return stored, SourceCache, nil
	}
	return stored, SourceGenerated, nil
}

// GetByURL looks up a cached summary without generating a new one. With a nil
// wordCount, the most recent summary for the URL is returned. A miss returns
// (nil, nil).
func (s *Service) GetByURL(ctx context.Context, rawURL string, wordCount *int) (*models.SummaryModel, error) {
	url, err := wiki.NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	var m *models.SummaryModel
	if wordCount != nil {
		m, err = s.repo.Find(url, *wordCount)
	} else {
		m, err = s.repo.FindLatest(url)
	}
	if err != nil {
		return nil, err
	}
	if m != nil {
		s.maybeRepairTranslation(ctx, m)
	}
	return m, nil
}

// translate runs the translation flow for a freshly generated summary and
// returns the stored text and origin. Translation failures never fail the
// request; they are recorded in the origin.
func (s *Service) translate(ctx context.Context, summaryText string, wordCount int) (*string, string) {
	if !s.cfg.EnableTranslation {
		return nil, ai.TranslationDisabled
	}

	text, origin, err := s.engine.Translate(ctx, summaryText, wordCount)
	if err != nil {
		s.logger.Error("translation failed", zap.Error(err))
		return nil, ai.TranslationError
	}
	if text == "" {
		return nil, origin
	}
	return &text, origin
}

// maybeRepairTranslation retries the translation on cache hits whose earlier
// attempt failed or ran without a credential.
func (s *Service) maybeRepairTranslation(ctx context.Context, m *models.SummaryModel) {
	if !s.cfg.EnableTranslation {
		return
	}
	if m.SummaryPtOrigin != ai.TranslationError && m.SummaryPtOrigin != ai.TranslationUnavailable {
		return
	}

	text, origin, err := s.engine.Translate(ctx, m.Summary, m.WordCount)
	if err != nil || text == "" {
		return
	}
	if updateErr := s.repo.UpdateTranslation(m, &text, origin); updateErr != nil {
		s.logger.Warn("failed to store repaired translation", zap.Error(updateErr))
	}
}
