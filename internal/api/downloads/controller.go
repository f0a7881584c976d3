package downloads

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Siphon/internal/api"
	"github.com/hbomb79/Siphon/internal/api/util"
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/internal/download"
	"github.com/hbomb79/Siphon/internal/ffmpeg"
	"github.com/hbomb79/Siphon/internal/youtube"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/labstack/echo/v4"
)

var log = logger.Get("Downloads")

type (
	downloadDto struct {
		Status  string                  `json:"status"`
		Message string                  `json:"message"`
		File    youtube.DownloadedFile  `json:"file"`
		Media   *ffmpeg.MediaInfo       `json:"media,omitempty"`
		YtData  youtube.CompactMetadata `json:"yt_data"`
	}

	// historyDto is a download history row shaped for the listing
	// endpoint. The on-disk path stays server-side.
	historyDto struct {
		ID           uuid.UUID `json:"id"`
		URL          string    `json:"url"`
		VideoID      string    `json:"video_id"`
		Title        string    `json:"title"`
		FileName     string    `json:"file_name"`
		SizeMB       float64   `json:"size_mb"`
		Format       string    `json:"format"`
		DurationSecs float64   `json:"duration_secs"`
		CreatedAt    time.Time `json:"created_at"`
	}

	DownloadService interface {
		Download(context.Context, youtube.ValidatedURL) (*youtube.Download, error)
	}

	// Store is the subset of the download store this controller reads from.
	Store interface {
		List(database.Queryable) ([]*download.Download, error)
		Search(database.Queryable, string) ([]*download.Download, error)
	}

	Controller struct {
		downloader DownloadService
		db         database.Manager
		store      Store
	}
)

func New(downloader DownloadService, db database.Manager, store Store) *Controller {
	return &Controller{downloader: downloader, db: db, store: store}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/yt_download", controller.performDownload)
	eg.GET("/downloads", controller.listHistory)
}

// performDownload runs the full download pipeline for the given video and
// blocks until the media file is on disk. The response describes the file
// together with the abbreviated video metadata.
func (controller *Controller) performDownload(ec echo.Context) error {
	raw := ec.QueryParam("url")
	if raw == "" {
		return api.Respond(ec, api.MissingParamResponse("url"))
	}

	url, err := youtube.ValidateURL(raw)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	result, err := controller.downloader.Download(ec.Request().Context(), url)
	if err != nil {
		return api.Respond(ec, api.FailureFromError(err))
	}

	return api.Respond(ec, api.JsonResponse(downloadDto{
		Status:  "success",
		Message: "Video downloaded successfully.",
		File:    result.File,
		Media:   result.Media,
		YtData:  result.Metadata.Compact(),
	}))
}

// listHistory returns recorded downloads, newest first; a 'search' query
// param switches the listing to fuzzy title/URL matching.
func (controller *Controller) listHistory(ec echo.Context) error {
	var (
		rows []*download.Download
		err  error
	)

	if term := ec.QueryParam("search"); term != "" {
		rows, err = controller.store.Search(controller.db.GetSqlxDb(), term)
	} else {
		rows, err = controller.store.List(controller.db.GetSqlxDb())
	}

	if err != nil {
		log.Errorf("Failed to read download history: %v\n", err)
		return api.Respond(ec, api.FailureResponse(api.ReasonInternal, "failed to read download history"))
	}

	return api.Respond(ec, api.JsonResponse(util.ApplyConversion(rows, newHistoryDto)))
}

func newHistoryDto(row *download.Download) historyDto {
	return historyDto{
		ID:           row.ID,
		URL:          row.URL,
		VideoID:      row.VideoID,
		Title:        row.Title,
		FileName:     row.FileName,
		SizeMB:       row.SizeMB,
		Format:       row.Format,
		DurationSecs: util.NotNilOrDefault(row.DurationSecs, 0),
		CreatedAt:    row.CreatedAt,
	}
}
