package dataURI

import (
	"strings"

	"github.com/vincent-petithory/dataurl"
	"golang.org/x/xerrors"
)

const scheme = "data:"

// IsDataURI reports whether v carries inline content. The scheme is matched
// without regard to case.
func IsDataURI(v string) bool {
	return len(v) >= len(scheme) && strings.EqualFold(v[:len(scheme)], scheme)
}

// IsLocalImage reports whether v is an inline image rather than a remote URL.
func IsLocalImage(v string) bool {
	if !IsDataURI(v) {
		return false
	}
	mediaType := v[len(scheme):]
	if i := strings.IndexAny(mediaType, ";,"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(mediaType)), "image/")
}

// Payload is the decoded content of a data URI.
type Payload struct {
	ContentType string
	Data        []byte
}

func Decode(v string) (*Payload, error) {
	if IsDataURI(v) {
		v = scheme + v[len(scheme):]
	}
	du, err := dataurl.DecodeString(v)
	if err != nil {
		return nil, xerrors.Errorf("decode data uri: %w", err)
	}
	if len(du.Data) == 0 {
		return nil, xerrors.New("data uri carries no content")
	}
	return &Payload{
		ContentType: du.MediaType.ContentType(),
		Data:        du.Data,
	}, nil
}
