package stats

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gjc-app/board-sync/pkg/apperrors"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

type Stats interface {
	GetSummary(ctx context.Context) (*Summary, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Stats

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/summary", h.getSummaryHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (s *httpHandler) getSummaryHandler(c *gin.Context) {
	summary, err := s.Service.GetSummary(c.Request.Context())
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.Message(err)})
		c.Abort()
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": summary})
}
