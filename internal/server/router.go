// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"productcatalog/internal/catalog"
	"productcatalog/internal/events"
	"productcatalog/internal/images"
	"productcatalog/internal/middleware"
	"productcatalog/internal/products"
)

type Deps struct {
	Catalog     *catalog.Store
	Images      *images.Store
	Hub         *events.Hub
	Logger      *zap.Logger
	CORSOrigins []string
}

func NewRouter(d Deps) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if d.Hub == nil {
		d.Hub = events.NewHub(logger)
	}

	router := gin.New()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = d.CORSOrigins

	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.SecureHeaders(),
		middleware.CORS(cors),
	)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := d.Hub.Stats()
		body := gin.H{
			"products":   d.Catalog.Len(),
			"loaded_at":  d.Catalog.LoadedAt(),
			"ws_clients": stats.WSClients,
		}
		if _, err := d.Images.Filenames(); err != nil {
			body["status"] = "not_ready"
			body["images_error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		body["status"] = "ready"
		c.JSON(http.StatusOK, body)
	})

	router.GET("/ws", events.WSHandler(d.Hub))

	api := router.Group("/api")
	products.NewHandler(d.Catalog, logger).RegisterRoutes(api.Group("/products"))
	catalog.NewHandler(d.Catalog, d.Images, d.Hub, logger).RegisterRoutes(api.Group("/catalog"))

	images.NewHandler(d.Images, logger).RegisterRoutes(router.Group("/images"))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
