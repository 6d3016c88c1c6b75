package summary

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wikisum/core/internal/config"
	"github.com/wikisum/core/internal/modules/wiki"
	"github.com/wikisum/core/internal/pkg/response"
)

type Handler struct {
	svc *Service
	cfg config.SummaryConfig
}

func NewHandler(svc *Service, cfg config.SummaryConfig) *Handler {
	return &Handler{svc: svc, cfg: cfg}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, createMW, lookupMW gin.HandlerFunc) {
	g := rg.Group("/summaries")
	g.POST("", wrap(createMW), h.createSummary)
	g.GET("", wrap(lookupMW), h.getSummary)
}

func wrap(mw gin.HandlerFunc) gin.HandlerFunc {
	if mw == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return mw
}

// POST /summaries
func (h *Handler) createSummary(c *gin.Context) {
	var dto createSummaryDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "url and word_count are required")
		return
	}
	if dto.WordCount > h.cfg.WordCountMax {
		response.UnprocessableEntity(c, fmt.Sprintf("word_count must not exceed %d", h.cfg.WordCountMax))
		return
	}

	model, source, err := h.svc.GetOrCreate(c.Request.Context(), dto.URL, dto.WordCount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, newSummaryResponse(model, source))
}

// GET /summaries?url=...&word_count=...
func (h *Handler) getSummary(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		response.BadRequest(c, "url query parameter is required")
		return
	}

	var wordCount *int
	if raw := c.Query("word_count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.BadRequest(c, "word_count must be a positive integer")
			return
		}
		if n > h.cfg.WordCountMax {
			response.UnprocessableEntity(c, fmt.Sprintf("word_count must not exceed %d", h.cfg.WordCountMax))
			return
		}
		wordCount = &n
	}

	model, err := h.svc.GetByURL(c.Request.Context(), url, wordCount)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if model == nil {
		response.NotFound(c, "no summary found for this url")
		return
	}
	response.OK(c, newSummaryResponse(model, SourceCache))
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, wiki.ErrInvalidInput):
		response.BadRequest(c, err.Error())
	case errors.Is(err, wiki.ErrScrapingFailure):
		response.BadGateway(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
