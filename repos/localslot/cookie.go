package localslot

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// oneYear keeps the anonymous id for as long as the browser keeps cookies.
const oneYear = 365 * 24 * 60 * 60

// Cookie is the Slot of one browser, read from and written to a request's cookies.
type Cookie struct {
	c       *gin.Context
	secure  bool
	written map[string]string
}

var _ Slot = (*Cookie)(nil)

func NewCookie(c *gin.Context, secure bool) *Cookie {
	return &Cookie{c: c, secure: secure, written: make(map[string]string)}
}

func (s *Cookie) GetItem(key string) (string, bool) {
	if v, ok := s.written[key]; ok {
		return v, true
	}
	v, err := s.c.Cookie(key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *Cookie) SetItem(key, value string) error {
	s.c.SetSameSite(http.SameSiteLaxMode)
	s.c.SetCookie(key, value, oneYear, "/", "", s.secure, true)
	s.written[key] = value
	return nil
}
