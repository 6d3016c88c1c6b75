package health

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	appredis "github.com/wikisum/core/internal/pkg/redis"
	"github.com/wikisum/core/internal/pkg/response"
)

// Handler serves liveness and readiness probes. The redis client is nil when
// rate limiting is disabled and is then excluded from readiness.
type Handler struct {
	db  *gorm.DB
	rds *appredis.Client
}

func NewHandler(db *gorm.DB, rds *appredis.Client) *Handler {
	return &Handler{db: db, rds: rds}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health/live", h.live)
	r.GET("/health/ready", h.ready)
}

func (h *Handler) live(c *gin.Context) {
	response.OK(c, gin.H{"status": "alive"})
}

func (h *Handler) ready(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	if err := h.db.WithContext(c.Request.Context()).Exec("SELECT 1").Error; err != nil {
		checks["database"] = err.Error()
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if h.rds != nil {
		if err := h.rds.Ping(c.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !healthy {
		response.ServiceUnavailable(c, gin.H{"status": "degraded", "checks": checks})
		return
	}
	response.OK(c, gin.H{"status": "ready", "checks": checks})
}
