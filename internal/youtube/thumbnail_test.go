package youtube_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newThumbnailService(spy *spyExecutor) *youtube.ThumbnailService {
	return youtube.NewThumbnailService(defaultConfig(), youtube.NewMetadataService(defaultConfig(), spy))
}

// metadataWithThumbnail swaps the fixture's thumbnail for the given URL
// so tests can point the service at a local image host.
func metadataWithThumbnail(thumbnailURL string) string {
	return strings.Replace(metadataJSON, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", thumbnailURL, 1)
}

func TestResolveURL_ReturnsThumbnailFromMetadata(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{stub: func(executor.Command) executor.Result { return resultWithJSON(metadataJSON) }}
	thumbnail, err := newThumbnailService(spy).ResolveURL(context.Background(), mustValidate(t, watchURL))

	require.Nil(t, err)
	assert.Equal(t, "dQw4w9WgXcQ", thumbnail.VideoID)
	assert.Equal(t, "Never Gonna Give You Up", thumbnail.Title)
	assert.Equal(t, "https://i.ytimg.com/vi/dQw4w9WgXcQ/maxresdefault.jpg", thumbnail.URL)
}

func TestResolveURL_MissingThumbnailIsParseFailure(t *testing.T) {
	t.Parallel()

	spy := &spyExecutor{stub: func(executor.Command) executor.Result {
		return resultWithJSON(`{"id": "dQw4w9WgXcQ", "title": "Never Gonna Give You Up"}`)
	}}

	thumbnail, err := newThumbnailService(spy).ResolveURL(context.Background(), mustValidate(t, watchURL))
	assert.Nil(t, thumbnail)

	var expected *youtube.OutputParseError
	assert.ErrorAs(t, err, &expected)
}

func TestFetchImage_ReturnsBytesAndContentType(t *testing.T) {
	t.Parallel()

	imageBytes := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0x00}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageBytes)
	}))
	t.Cleanup(server.Close)

	spy := &spyExecutor{stub: func(executor.Command) executor.Result {
		return resultWithJSON(metadataWithThumbnail(server.URL + "/maxresdefault.png"))
	}}

	image, err := newThumbnailService(spy).FetchImage(context.Background(), mustValidate(t, watchURL))
	require.Nil(t, err)
	assert.Equal(t, imageBytes, image.Bytes)
	assert.Equal(t, "image/png", image.ContentType)
}

func TestFetchImage_MissingContentTypeDefaultsToJpeg(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress the automatic content sniffing so the response truly
		// carries no Content-Type header.
		w.Header()["Content-Type"] = nil
		w.Write([]byte("artwork"))
	}))
	t.Cleanup(server.Close)

	spy := &spyExecutor{stub: func(executor.Command) executor.Result {
		return resultWithJSON(metadataWithThumbnail(server.URL + "/art"))
	}}

	image, err := newThumbnailService(spy).FetchImage(context.Background(), mustValidate(t, watchURL))
	require.Nil(t, err)
	assert.Equal(t, "image/jpeg", image.ContentType)
}

func TestFetchImage_NonOKHostResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	spy := &spyExecutor{stub: func(executor.Command) executor.Result {
		return resultWithJSON(metadataWithThumbnail(server.URL + "/missing.jpg"))
	}}

	image, err := newThumbnailService(spy).FetchImage(context.Background(), mustValidate(t, watchURL))
	assert.Nil(t, image)

	var expected *youtube.ThumbnailFetchError
	assert.ErrorAs(t, err, &expected)
}

func TestFetchImage_UnreachableHost(t *testing.T) {
	t.Parallel()

	// Close the server immediately so the fetch is refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	thumbnailURL := server.URL + "/art.jpg"
	server.Close()

	spy := &spyExecutor{stub: func(executor.Command) executor.Result {
		return resultWithJSON(metadataWithThumbnail(thumbnailURL))
	}}

	image, err := newThumbnailService(spy).FetchImage(context.Background(), mustValidate(t, watchURL))
	assert.Nil(t, image)

	var expected *youtube.ThumbnailFetchError
	assert.ErrorAs(t, err, &expected)
}
