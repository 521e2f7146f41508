package util

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "my_photo_1_.png", SanitizeFilename("../../my photo(1).png"))
	assert.Equal(t, "clip.mp4", SanitizeFilename("clip.mp4"))
}

func TestUploadObjectName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "events/1700000000123-a_b.jpg", UploadObjectName(FolderEvents, "a b.jpg", now))
}

func TestDetectMimeType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	mime, err := DetectMimeType(bytes.NewReader(png), AllowedMimeTypes(FolderPosts))
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.True(t, IsImage(mime))

	_, err = DetectMimeType(bytes.NewReader([]byte("plain text body")), AllowedMimeTypes(FolderAvatars))
	assert.Error(t, err)
}

func TestFolders(t *testing.T) {
	assert.True(t, ValidFolder(FolderEvents))
	assert.False(t, ValidFolder("../etc"))
	assert.Contains(t, AllowedMimeTypes(FolderEvents), MimeVideo)
	assert.NotContains(t, AllowedMimeTypes(FolderPosts), MimeVideo)
}
