package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"productcatalog/internal/events"
	"productcatalog/internal/resolver"
)

// ImageLister is the part of the image store the audit endpoint needs.
type ImageLister interface {
	Filenames() ([]string, error)
}

type Broadcaster interface {
	BroadcastJSON(v any)
}

// Handler exposes catalog maintenance over HTTP: explicit reload and a
// read-only audit of image references.
type Handler struct {
	Store  *Store
	Images ImageLister
	Events Broadcaster
	Logger *zap.Logger
}

func NewHandler(store *Store, images ImageLister, ev Broadcaster, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Images: images, Events: ev, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/reload", h.reload) // POST /api/catalog/reload
	rg.GET("/audit", h.audit)    // GET /api/catalog/audit
}

func (h *Handler) reload(c *gin.Context) {
	n, err := h.Store.Reload()
	if err != nil {
		h.Logger.Error("catalog reload failed", zap.String("path", h.Store.Path()), zap.Error(err))
		switch {
		case errors.Is(err, ErrCatalogNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "catalog not found"})
		case errors.Is(err, ErrCatalogParse):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "catalog is not valid json"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		}
		return
	}

	h.Logger.Info("catalog reloaded", zap.Int("products", n))
	if h.Events != nil {
		h.Events.BroadcastJSON(events.New(events.TypeCatalogReloaded, n))
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded", "products": n})
}

func (h *Handler) audit(c *gin.Context) {
	names, err := h.Images.Filenames()
	if err != nil {
		h.Logger.Error("list images failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image store unavailable"})
		return
	}

	c.JSON(http.StatusOK, resolver.Audit(h.Store.All(), names))
}
