package assets

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAsset(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func setupShell(t *testing.T) (*Cache, *gin.Engine, string) {
	t.Helper()
	dir := t.TempDir()
	writeAsset(t, dir, "index.html", "<html>shell</html>")
	writeAsset(t, dir, "offline.html", "<html>offline</html>")

	cache := NewCache(dir, "offline.html", []string{"/", "/index.html", "/offline.html"})
	cache.Prime()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/assets/refresh", cache.RefreshHandler())
	r.NoRoute(cache.Handler())
	return cache, r, dir
}

func TestServesPrimedAssetFromMemory(t *testing.T) {
	_, router, dir := setupShell(t)

	// Remove the disk copy: a cache hit must not touch the disk.
	require.NoError(t, os.Remove(filepath.Join(dir, "index.html")))

	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<html>shell</html>", rec.Body.String())
}

func TestRootServesIndex(t *testing.T) {
	_, router, _ := setupShell(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shell")
}

func TestUnprimedAssetFallsBackToDisk(t *testing.T) {
	_, router, dir := setupShell(t)
	writeAsset(t, dir, "extra.css", "body{}")

	req := httptest.NewRequest(http.MethodGet, "/extra.css", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "body{}", rec.Body.String())
}

func TestMissingNavigationGetsOfflinePage(t *testing.T) {
	_, router, _ := setupShell(t)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("Sec-Fetch-Mode", "navigate")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "offline")
}

func TestMissingSubresourceIs404(t *testing.T) {
	_, router, _ := setupShell(t)

	req := httptest.NewRequest(http.MethodGet, "/missing.js", nil)
	req.Header.Set("Accept", "*/*")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRefreshRePrimesCache(t *testing.T) {
	_, router, dir := setupShell(t)

	writeAsset(t, dir, "index.html", "<html>v2</html>")

	// Still the old copy until a refresh arrives.
	req := httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, "<html>shell</html>", rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/assets/refresh", strings.NewReader(`{"type":"SKIP_WAITING"}`))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/index.html", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "<html>v2</html>", rec.Body.String())
}

func TestRefreshRejectsUnknownMessage(t *testing.T) {
	_, router, _ := setupShell(t)

	req := httptest.NewRequest(http.MethodPost, "/assets/refresh", strings.NewReader(`{"type":"PING"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPathTraversalStaysInsideRoot(t *testing.T) {
	cache, _, _ := setupShell(t)

	outside := cache.diskPath("/../../etc/passwd")
	assert.True(t, strings.HasPrefix(outside, cache.dir))
}
