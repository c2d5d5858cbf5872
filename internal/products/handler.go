package products

import (
	"encoding/json"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
	"productcatalog/internal/resolver"
	"productcatalog/pkg/models"
)

var absoluteURL = regexp.MustCompile(`^(?i:[a-z]+:)?//`)

type Handler struct {
	Catalog *catalog.Store
	Logger  *zap.Logger
}

func NewHandler(store *catalog.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Catalog: store, Logger: logger}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)        // GET /api/products?type=...
	rg.GET("/:id", h.getByID) // GET /api/products/:id
}

// productView is a Product as served over HTTP: image becomes an absolute
// URL, or null when the catalog has none.
type productView struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Image       *string `json:"image"`

	Extra map[string]json.RawMessage `json:"-"`
}

// view has productView's fields without its methods.
type view productView

// MarshalJSON serves catalog fields the API does not model as they are
// stored.
func (v productView) MarshalJSON() ([]byte, error) {
	b, err := json.Marshal(view(v))
	if err != nil {
		return nil, err
	}
	return models.AppendExtra(b, v.Extra)
}

func (h *Handler) list(c *gin.Context) {
	items := h.Catalog.ByType(c.Query("type"))

	out := make([]productView, 0, len(items))
	for _, p := range items {
		out = append(out, toView(c, p))
	}

	h.Logger.Debug("list products", zap.String("type", c.Query("type")), zap.Int("count", len(out)))
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return
	}

	p, ok := h.Catalog.ByID(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, toView(c, p))
}

func toView(c *gin.Context, p models.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Type:        p.Type,
		Price:       p.Price,
		Description: p.Description,
		Image:       imageURL(c.Request, p.Image),
		Extra:       p.Extra,
	}
}

// imageURL passes absolute URLs through and points everything else at the
// image route on this host.
func imageURL(r *http.Request, image string) *string {
	if image == "" {
		return nil
	}
	if absoluteURL.MatchString(image) {
		return &image
	}

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := scheme + "://" + r.Host + "/images/" + url.PathEscape(resolver.Basename(image))
	return &u
}
