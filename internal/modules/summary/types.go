package summary

import (
	"time"

	"github.com/wikisum/core/internal/models"
	"github.com/wikisum/core/internal/pkg/textutil"
)

type createSummaryDTO struct {
	URL       string `json:"url"        binding:"required"`
	WordCount int    `json:"word_count" binding:"required"`
}

type summaryResponse struct {
	URL             string    `json:"url"`
	WordCount       int       `json:"word_count"`
	ActualWordCount int       `json:"actual_word_count"`
	Summary         string    `json:"summary"`
	SummaryOrigin   string    `json:"summary_origin"`
	SummaryPt       *string   `json:"summary_pt"`
	SummaryPtOrigin string    `json:"summary_pt_origin"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

func newSummaryResponse(m *models.SummaryModel, source string) summaryResponse {
	return summaryResponse{
		URL:             m.URL,
		WordCount:       m.WordCount,
		ActualWordCount: textutil.WordCount(m.Summary),
		Summary:         m.Summary,
		SummaryOrigin:   m.SummaryOrigin,
		SummaryPt:       m.SummaryPt,
		SummaryPtOrigin: m.SummaryPtOrigin,
		Source:          source,
		CreatedAt:       m.CreatedAt,
	}
}
