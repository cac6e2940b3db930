package bridge

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tablelog/internal/auth"
	"tablelog/internal/common"
)

// HTTPServer is the REST surface over a Service.
type HTTPServer struct {
	service *Service
	authMW  *auth.AuthMiddleware
}

// NewHTTPServer returns an HTTPServer. authMW may be nil to disable auth.
func NewHTTPServer(service *Service, authMW *auth.AuthMiddleware) *HTTPServer {
	return &HTTPServer{service: service, authMW: authMW}
}

// Router builds the gin engine for this server.
func (h *HTTPServer) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	r.GET("/health", h.healthCheck)

	api := r.Group("/api/v1")
	if h.authMW != nil {
		api.Use(h.requireAuth)
	}
	api.GET("/snapshot", h.getSnapshot)
	api.GET("/files", h.listFiles)

	return r
}

func (h *HTTPServer) requireAuth(c *gin.Context) {
	claims, err := h.authMW.ExtractAndValidateToken(c.Request.Context(), c.GetHeader("Authorization"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "details": err.Error()})
		c.Abort()
		return
	}
	c.Set("claims", claims)
	c.Next()
}

func (h *HTTPServer) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "tablelog-bridge",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPServer) versionParam(c *gin.Context) (int64, error) {
	raw := c.Query("version")
	if raw == "" {
		return -1, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func (h *HTTPServer) getSnapshot(c *gin.Context) {
	version, err := h.versionParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version", "details": err.Error()})
		return
	}

	summary, err := h.service.Snapshot(c.Request.Context(), version)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *HTTPServer) listFiles(c *gin.Context) {
	version, err := h.versionParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version", "details": err.Error()})
		return
	}

	result, err := h.service.ListFiles(c.Request.Context(), version)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func writeServiceError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if common.IsErrorCode(err, common.ErrTableNotFound) || common.IsErrorCode(err, common.ErrInvalidInput) {
		status = http.StatusNotFound
	}
	log.Printf("❌ bridge request failed: %v", err)
	c.JSON(status, gin.H{"error": "request failed", "details": err.Error()})
}
