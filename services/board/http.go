package board

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/gjc-app/board-sync/models"
	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/auth"
	"github.com/gjc-app/board-sync/pkg/logger"
	"github.com/gjc-app/board-sync/services/session"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	POST(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	DELETE(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Views is the read side the transport renders from.
type Views interface {
	List(ctx context.Context, collection string, viewer session.Session, f Filter) (any, error)
	Owner(ctx context.Context, collection, id string) (string, error)
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Mutations

	// Views renders listings and decides which deletes are offered.
	Views Views

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{HTTPOptions: opts, log: logger.Component("board-http")}
	r.GET("/:collection", h.listHandler)
	r.POST("/recruitments", h.createRecruitmentHandler)
	r.POST("/scrims", h.createScrimHandler)
	r.POST("/events", h.createEventHandler)
	r.POST("/loadouts", h.createLoadoutHandler)
	r.DELETE("/:collection/:id", h.deleteHandler)
	r.POST("/recruitments/:id/join", h.applyHandler(models.Recruitments))
	r.POST("/scrims/:id/apply", h.applyHandler(models.Scrims))
	r.POST("/events/:id/join", h.markJoinedHandler)
}

type httpHandler struct {
	HTTPOptions
	log zerolog.Logger
}

func (h *httpHandler) fail(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, gin.H{"error": apperrors.Message(err)})
	c.Abort()
}

func (h *httpHandler) listHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	var f Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	items, err := h.Views.List(c.Request.Context(), c.Param("collection"), s, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func bindAndCreate[D any](h *httpHandler, c *gin.Context, create func(context.Context, session.Session, D) (string, error)) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	var draft D
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		c.Abort()
		return
	}

	id, err := create(c.Request.Context(), s, draft)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *httpHandler) createRecruitmentHandler(c *gin.Context) {
	bindAndCreate(h, c, h.Service.CreateRecruitment)
}

func (h *httpHandler) createScrimHandler(c *gin.Context) {
	bindAndCreate(h, c, h.Service.CreateScrim)
}

func (h *httpHandler) createEventHandler(c *gin.Context) {
	bindAndCreate(h, c, h.Service.CreateEvent)
}

func (h *httpHandler) createLoadoutHandler(c *gin.Context) {
	bindAndCreate(h, c, h.Service.CreateLoadout)
}

// deleteHandler only performs deletes the viewer was offered: the item must be
// theirs and the request must carry confirm=true.
func (h *httpHandler) deleteHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	collection, id := c.Param("collection"), c.Param("id")

	if c.Query("confirm") != "true" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "delete must be confirmed"})
		c.Abort()
		return
	}

	owner, err := h.Views.Owner(c.Request.Context(), collection, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if owner != s.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author can delete this item"})
		c.Abort()
		return
	}

	if err := h.Service.Delete(c.Request.Context(), collection, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *httpHandler) applyHandler(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := auth.MustSession(c)
		if !ok {
			return
		}
		if err := h.Service.JoinOrApply(c.Request.Context(), s, collection, c.Param("id")); err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"message": "request sent"})
	}
}

func (h *httpHandler) markJoinedHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	if err := h.Service.MarkJoined(c.Request.Context(), s, c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "entry registered"})
}
