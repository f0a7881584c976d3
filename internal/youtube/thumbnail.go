package youtube

import (
	"context"
	"io"
	"net/http"
)

type (
	// Thumbnail points at the artwork for a video without carrying the
	// image itself.
	Thumbnail struct {
		VideoID string
		Title   string
		URL     string
	}

	// ThumbnailImage is fetched artwork, ready to be served verbatim.
	ThumbnailImage struct {
		Bytes       []byte
		ContentType string
	}

	ThumbnailService struct {
		config   DownloadConfig
		metadata *MetadataService
	}
)

const defaultThumbnailContentType = "image/jpeg"

func NewThumbnailService(config DownloadConfig, metadata *MetadataService) *ThumbnailService {
	return &ThumbnailService{config: config, metadata: metadata}
}

// ResolveURL finds the thumbnail URL for a video via its yt-dlp
// metadata. Videos without a thumbnail field are treated as a metadata
// shape problem.
func (service *ThumbnailService) ResolveURL(ctx context.Context, url ValidatedURL) (*Thumbnail, error) {
	metadata, err := service.metadata.FetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}

	if metadata.Thumbnail == "" {
		return nil, &OutputParseError{reason: "no thumbnail present in video metadata"}
	}

	return &Thumbnail{VideoID: metadata.ID, Title: metadata.Title, URL: metadata.Thumbnail}, nil
}

// FetchImage resolves the thumbnail URL and then downloads the image
// bytes from it, preserving the content type the host reported.
func (service *ThumbnailService) FetchImage(ctx context.Context, url ValidatedURL) (*ThumbnailImage, error) {
	thumbnail, err := service.ResolveURL(ctx, url)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, thumbnail.URL, nil)
	if err != nil {
		return nil, &ThumbnailFetchError{reason: "thumbnail URL is malformed"}
	}

	client := http.Client{Timeout: service.config.ThumbnailTimeout()}
	response, err := client.Do(request)
	if err != nil {
		return nil, &ThumbnailFetchError{reason: err.Error()}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &ThumbnailFetchError{statusCode: response.StatusCode, reason: "image host returned a non-OK response"}
	}

	bytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &ThumbnailFetchError{reason: "failed to read image body: " + err.Error()}
	}

	contentType := response.Header.Get("Content-Type")
	if contentType == "" {
		contentType = defaultThumbnailContentType
	}

	log.Debugf("Fetched thumbnail for video '%s' (%d bytes, %s)\n", thumbnail.VideoID, len(bytes), contentType)

	return &ThumbnailImage{Bytes: bytes, ContentType: contentType}, nil
}
