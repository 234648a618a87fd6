package dataURI

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsLocalImage(t *testing.T) {
	assert.True(t, IsLocalImage("data:image/png;base64,iVBORw0KGgo="))
	assert.False(t, IsLocalImage("https://firebasestorage.googleapis.com/v0/b/x/o/avatars%2Fa"))
	assert.False(t, IsLocalImage(""))
}

func TestIsLocalImageIgnoresSchemeCase(t *testing.T) {
	assert.True(t, IsLocalImage("Data:image/png;base64,iVBORw0KGgo="))
	assert.True(t, IsLocalImage("DATA:IMAGE/JPEG;base64,/9j/4AAQ"))
	assert.True(t, IsDataURI("dAtA:,hello"))
}

func TestIsLocalImageRejectsOtherMediaTypes(t *testing.T) {
	assert.False(t, IsLocalImage("data:text/html;base64,PGI+aGk8L2I+"))
	assert.False(t, IsLocalImage("data:,hello"))
	assert.False(t, IsLocalImage("data:imagex,hello"))
	assert.True(t, IsDataURI("data:text/html;base64,PGI+aGk8L2I+"))
	assert.False(t, IsDataURI("https://example.com/data:image/png"))
}

func TestDecode(t *testing.T) {
	p, err := Decode("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)

	assert.Equal(t, "image/png", p.ContentType)
	assert.Equal(t, []byte("hello"), p.Data)
}

func TestDecodeUpperCaseScheme(t *testing.T) {
	p, err := Decode("Data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), p.Data)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := Decode("not a data uri")
	assert.Error(t, err)
}
