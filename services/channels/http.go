package channels

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/gjc-app/board-sync/pkg/apperrors"
	"github.com/gjc-app/board-sync/pkg/auth"
	"github.com/gjc-app/board-sync/services/session"
)

// Router is the interface for a router.
type Router interface {
	GET(relativePath string, handlers ...gin.HandlerFunc) gin.IRoutes
	Use(middleware ...gin.HandlerFunc) gin.IRoutes
	Group(relativePath string, handlers ...gin.HandlerFunc) *gin.RouterGroup
}

// Streamer renders a collection for one viewer each time it changes, until
// emit returns false or ctx ends.
type Streamer interface {
	Watch(ctx context.Context, collection string, viewer session.Session, emit func(view any) bool) error
}

// HTTPOptions contains all the options needed for the HTTP handler.
type HTTPOptions struct {

	// The service we provides the HTTP transport for.
	Service Streamer

	// The router instance to configure the HTTP routes.
	Router Router
}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler(opts HTTPOptions) {
	r := opts.Router
	h := &httpHandler{opts}
	r.GET("/:collection", h.streamHandler)
}

type httpHandler struct {
	HTTPOptions
}

// streamHandler sends a "snapshot" server-sent event with the full ordered
// view on every change. The subscription ends with the request.
func (h *httpHandler) streamHandler(c *gin.Context) {
	s, ok := auth.MustSession(c)
	if !ok {
		return
	}
	collection := c.Param("collection")

	views := make(chan any, 1)
	errc := make(chan error, 1)
	ctx := c.Request.Context()

	go func() {
		errc <- h.Service.Watch(ctx, collection, s, func(view any) bool {
			select {
			case <-views:
			default:
			}
			views <- view
			return ctx.Err() == nil
		})
	}()

	// The first view decides between an error response and a stream.
	var first any
	select {
	case first = <-views:
	case err := <-errc:
		select {
		case first = <-views:
		default:
			if err == nil {
				err = ErrClosed
			}
			c.JSON(apperrors.HTTPStatus(err), gin.H{"error": apperrors.Message(err)})
			c.Abort()
			return
		}
		errc <- err
	case <-ctx.Done():
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", first)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case view := <-views:
			c.SSEvent("snapshot", view)
			return true
		case err := <-errc:
			// Watch has returned, so at most one view is still pending.
			select {
			case view := <-views:
				c.SSEvent("snapshot", view)
			default:
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				c.SSEvent("error", gin.H{"error": apperrors.Message(err)})
			}
			return false
		case <-ctx.Done():
			return false
		}
	})
}
