package profile

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/auth"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	PUT(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Service

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/me", h.getMeHandler)
	r.PUT("/me", h.updateMeHandler)
}

type httpHandler struct {
	HTTPOptions
}

func (h *httpHandler) getMeHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *httpHandler) updateMeHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	profile, err := h.Service.UpdateProfile(c.Request.Context(), s, req.Edits())
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.Message(err)})
		c.Abort()
		return
	}
	c.JSON(http.StatusOK, gin.H{"userId": s.UserID, "profile": profile})
}
