// Package assets serves the app shell with service-worker style caching:
// a fixed manifest is primed into memory up front, GET requests are
// answered cache-first with the disk as fallback, and navigations degrade
// to the offline page when the asset cannot be produced.
package assets

import (
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DefaultManifest is the fixed set of shell assets pre-cached at startup.
var DefaultManifest = []string{
	"/",
	"/index.html",
	"/offline.html",
	"/manifest.webmanifest",
	"/icon-192.png",
	"/icon-512.png",
}

// Cache is the in-memory shell asset cache.
type Cache struct {
	dir         string
	offlinePage string
	manifest    []string

	mu      sync.RWMutex
	entries map[string][]byte
}

// NewCache builds a cache rooted at dir. offlinePage is the navigation
// fallback, relative to dir.
func NewCache(dir, offlinePage string, manifest []string) *Cache {
	if len(manifest) == 0 {
		manifest = DefaultManifest
	}
	return &Cache{
		dir:         dir,
		offlinePage: "/" + strings.TrimPrefix(offlinePage, "/"),
		manifest:    manifest,
		entries:     map[string][]byte{},
	}
}

// Prime loads the manifest into memory. Missing files are logged and
// skipped; the cache still serves what it found.
func (c *Cache) Prime() {
	entries := make(map[string][]byte, len(c.manifest))
	for _, p := range c.manifest {
		data, err := os.ReadFile(c.diskPath(p))
		if err != nil {
			log.Warn().Err(err).Str("asset", p).Msg("asset precache skip")
			continue
		}
		entries[normalize(p)] = data
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	log.Info().Int("assets", len(entries)).Msg("shell assets primed")
}

// Handler serves shell assets cache-first. Unknown paths fall back to the
// disk; navigations that still cannot be served get the offline page.
func (c *Cache) Handler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Status(http.StatusNotFound)
			return
		}

		p := normalize(ctx.Request.URL.Path)
		if data, ok := c.lookup(p); ok {
			serve(ctx, p, data)
			return
		}

		if data, err := os.ReadFile(c.diskPath(p)); err == nil {
			serve(ctx, p, data)
			return
		}

		if isNavigation(ctx.Request) {
			if data, ok := c.lookup(normalize(c.offlinePage)); ok {
				ctx.Data(http.StatusServiceUnavailable, "text/html; charset=utf-8", data)
				return
			}
		}
		ctx.Status(http.StatusNotFound)
	}
}

// RefreshHandler is the update mechanism: a skip-waiting message re-primes
// the cache immediately.
func (c *Cache) RefreshHandler() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		var req struct {
			Type string `json:"type"`
		}
		if err := ctx.ShouldBindJSON(&req); err != nil || req.Type != "SKIP_WAITING" {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "unknown message"})
			return
		}
		c.Prime()
		ctx.JSON(http.StatusOK, gin.H{"status": "activated"})
	}
}

func (c *Cache) lookup(p string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, ok := c.entries[p]
	return data, ok
}

func (c *Cache) diskPath(p string) string {
	if p == "/" {
		p = "/index.html"
	}
	return filepath.Join(c.dir, filepath.FromSlash(strings.TrimPrefix(path.Clean("/"+p), "/")))
}

func normalize(p string) string {
	p = path.Clean("/" + p)
	if p == "/" {
		return "/index.html"
	}
	return p
}

func serve(ctx *gin.Context, p string, data []byte) {
	contentType := mime.TypeByExtension(path.Ext(p))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ctx.Data(http.StatusOK, contentType, data)
}

func isNavigation(r *http.Request) bool {
	if r.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
