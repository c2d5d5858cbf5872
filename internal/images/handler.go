package images

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const cacheControl = "public, max-age=86400"

type Handler struct {
	Store  *Store
	Logger *zap.Logger
}

func NewHandler(store *Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Store: store, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/:file", h.serve) // GET /images/:file
}

func (h *Handler) serve(c *gin.Context) {
	requested := c.Param("file")

	res, err := h.Store.Lookup(requested)
	if err != nil {
		if errors.Is(err, ErrDisallowedExtension) {
			h.Logger.Info("invalid image type requested", zap.String("file", requested))
			c.String(http.StatusBadRequest, "Invalid image type")
			return
		}
		h.Logger.Error("serve image failed", zap.String("file", requested), zap.Error(err))
		c.String(http.StatusInternalServerError, "Something broke!")
		return
	}

	switch res.Match {
	case MatchPlaceholder:
		h.Logger.Info("serving placeholder", zap.String("file", requested))
	default:
		h.Logger.Debug("serving image", zap.String("file", res.Name), zap.String("match", string(res.Match)))
	}

	c.Header("Cache-Control", cacheControl)
	if res.ContentType != "" {
		c.Header("Content-Type", res.ContentType)
	}
	c.File(res.Path)
}
