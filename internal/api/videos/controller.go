package videos

import (
	"context"
	"strconv"

	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/labstack/echo/v4"
)

type (
	detailsDto struct {
		Status string               `json:"status"`
		YtURL  string               `json:"yt_url"`
		Data   youtube.VideoSummary `json:"data"`
		Raw    map[string]any       `json:"raw"`
	}

	thumbnailDto struct {
		Status    string `json:"status"`
		Message   string `json:"message"`
		VideoID   string `json:"video_id"`
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
	}

	MetadataService interface {
		FetchMetadata(context.Context, youtube.ValidatedURL) (*youtube.VideoMetadata, error)
	}

	ThumbnailService interface {
		ResolveURL(context.Context, youtube.ValidatedURL) (*youtube.Thumbnail, error)
		FetchImage(context.Context, youtube.ValidatedURL) (*youtube.ThumbnailImage, error)
	}

	// Controller exposes the read-only video inspection endpoints; both
	// resolve information about a remote video without touching disk.
	Controller struct {
		metadata   MetadataService
		thumbnails ThumbnailService
	}
)

func New(metadata MetadataService, thumbnails ThumbnailService) *Controller {
	return &Controller{metadata: metadata, thumbnails: thumbnails}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/yt_details", controller.getDetails)
	eg.GET("/yt_thumbnail", controller.getThumbnail)
}

// getDetails fetches the full metadata document for the given video and
// returns the summarised fields alongside the unmodified tool output.
func (controller *Controller) getDetails(ec echo.Context) error {
	raw := ec.QueryParam("url")
	if raw == "" {
		return api.Respond(ec, api.MissingParamResponse("url"))
	}

	url, err := youtube.ValidateURL(raw)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	metadata, err := controller.metadata.FetchMetadata(ec.Request().Context(), url)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	return api.Respond(ec, api.JsonResponse(detailsDto{
		Status: "success",
		YtURL:  url.String(),
		Data:   metadata.Summary(),
		Raw:    metadata.Raw,
	}))
}

// getThumbnail resolves the video's thumbnail URL. With download=true the
// image itself is fetched and returned as raw bytes under the upstream
// content type.
func (controller *Controller) getThumbnail(ec echo.Context) error {
	raw := ec.QueryParam("url")
	if raw == "" {
		return api.Respond(ec, api.MissingParamResponse("url"))
	}

	url, err := youtube.ValidateURL(raw)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	download := false
	if rawDownload := ec.QueryParam("download"); rawDownload != "" {
		download, err = strconv.ParseBool(rawDownload)
		if err != nil {
			return api.Respond(ec, api.FailureResponse(api.ReasonValidation, "query parameter 'download' must be a boolean"))
		}
	}

	if download {
		image, err := controller.thumbnails.FetchImage(ec.Request().Context(), url)
		if err != nil {
			return api.Respond(ec, api.FailureFromError(err))
		}

		return api.Respond(ec, api.RawResponse(image.Bytes, image.ContentType))
	}

	thumbnail, err := controller.thumbnails.ResolveURL(ec.Request().Context(), url)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	return api.Respond(ec, api.JsonResponse(thumbnailDto{
		Status:    "success",
		Message:   "Thumbnail URL retrieved successfully.",
		VideoID:   thumbnail.VideoID,
		Title:     thumbnail.Title,
		Thumbnail: thumbnail.URL,
	}))
}
