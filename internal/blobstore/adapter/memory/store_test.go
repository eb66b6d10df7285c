package memory

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firebase-kit/internal/blobstore/domain/model"
	apperrors "firebase-kit/internal/shared/errors"
)

func TestStore_UploadDownloadDelete(t *testing.T) {
	ctx := context.Background()
	s := NewStore("http://localhost/raw/")

	obj, err := s.Upload(ctx, "docs/a.txt", strings.NewReader("hello"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "docs/a.txt", obj.Name)
	assert.Equal(t, int64(5), obj.Size)

	blob, err := s.Download(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), blob.Data)
	assert.Equal(t, "text/plain", blob.ContentType)

	blob.Data[0] = 'j'
	again, err := s.Download(ctx, "docs/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again.Data)

	require.NoError(t, s.Delete(ctx, "docs/a.txt"))
	_, err = s.Download(ctx, "docs/a.txt")
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "docs/a.txt"), apperrors.ErrObjectNotFound)
}

func TestStore_DefaultsContentType(t *testing.T) {
	s := NewStore("")
	obj, err := s.Upload(context.Background(), "bin", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.Equal(t, model.DefaultContentType, obj.ContentType)
}

func TestStore_RejectsInvalidName(t *testing.T) {
	_, err := NewStore("").Upload(context.Background(), "../etc", strings.NewReader(""), "")
	assert.True(t, apperrors.IsValidation(err))
}

func TestStore_DownloadURLExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewStore("http://localhost/raw/")
	s.now = func() time.Time { return now }

	_, err := s.DownloadURL(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)

	_, err = s.Upload(ctx, "a.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)

	_, err = s.DownloadURL(ctx, "a.png", 0)
	assert.True(t, apperrors.IsValidation(err))

	url, err := s.DownloadURL(ctx, "a.png", time.Minute)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "http://localhost/raw/"))
	token := strings.TrimPrefix(url, "http://localhost/raw/")

	blob, err := s.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), blob.Data)

	now = now.Add(time.Minute)
	_, err = s.Resolve(ctx, token)
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)

	_, err = s.Resolve(ctx, "unknown")
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
}

func TestStore_TokenOutlivesDeletedObject(t *testing.T) {
	ctx := context.Background()
	s := NewStore("")
	_, err := s.Upload(ctx, "a", strings.NewReader("1"), "")
	require.NoError(t, err)
	url, err := s.DownloadURL(ctx, "a", time.Hour)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "a"))
	_, err = s.Resolve(ctx, strings.TrimPrefix(url, "/"))
	assert.ErrorIs(t, err, apperrors.ErrObjectNotFound)
}
