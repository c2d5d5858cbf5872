package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productcatalog/internal/catalog"
	"productcatalog/internal/images"
)

const catalogJSON = `[
  {"id": 1, "name": "Red Mug", "type": "kitchen", "price": 9.5, "description": "A mug", "image": "/static/red_mug.png"},
  {"id": 2, "name": "Desk Lamp", "type": "office", "price": 30, "description": "", "image": "https://cdn.example/lamp.jpg"},
  {"id": 3, "name": "Poster", "type": "office", "price": 5, "description": "", "image": ""}
]`

func newTestRouter(t *testing.T) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	root := t.TempDir()
	catalogPath := filepath.Join(root, "products.json")
	require.NoError(t, os.WriteFile(catalogPath, []byte(catalogJSON), 0o644))

	imgDir := filepath.Join(root, "images")
	require.NoError(t, os.Mkdir(imgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(imgDir, "red_mug.png"), []byte("png"), 0o644))

	store := catalog.NewStore(catalogPath)
	_, err := store.Reload()
	require.NoError(t, err)

	return NewRouter(Deps{
		Catalog:     store,
		Images:      images.NewStore(imgDir, nil),
		CORSOrigins: []string{"https://shop.example"},
	}), imgDir
}

func do(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}

func TestReady(t *testing.T) {
	r, imgDir := newTestRouter(t)

	w := do(r, http.MethodGet, "/ready")
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
	assert.EqualValues(t, 3, body["products"])

	require.NoError(t, os.RemoveAll(imgDir))
	w = do(r, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestProductsEndToEnd(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/products?type=office")
	require.Equal(t, http.StatusOK, w.Code)
	var office []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &office))
	require.Len(t, office, 2)
	assert.Equal(t, "https://cdn.example/lamp.jpg", office[0]["image"])
	assert.Nil(t, office[1]["image"])

	w = do(r, http.MethodGet, "/api/products/1")
	require.Equal(t, http.StatusOK, w.Code)
	var mug map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &mug))
	assert.Equal(t, "http://example.com/images/red_mug.png", mug["image"])

	// the URL handed out is servable
	w = do(r, http.MethodGet, "/images/red_mug.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())
}

func TestImagesFallBackToPlaceholder(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/images/red_mug.jpg")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png", w.Body.String())

	w = do(r, http.MethodGet, "/images/missing.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No Image")

	w = do(r, http.MethodGet, "/images/evil.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogAuditAndReload(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/api/catalog/audit")
	require.Equal(t, http.StatusOK, w.Code)
	var audit struct {
		Count      int  `json:"count"`
		AllMatched bool `json:"all_matched"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &audit))
	assert.Equal(t, 2, audit.Count)
	assert.False(t, audit.AllMatched)

	w = do(r, http.MethodPost, "/api/catalog/reload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"reloaded","products":3}`, w.Body.String())
}

func TestCORSAndNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Origin", "https://shop.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://shop.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(r, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}
