package youtube

import (
	"context"
	"encoding/json"

	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/internal/tools"
	"github.com/hbomb79/Siphon/pkg/logger"
	"github.com/mitchellh/mapstructure"
)

var log = logger.Get("YouTube")

const descriptionLimit = 500

type (
	// VideoFormat is one entry from the format listing yt-dlp reports
	// for a video.
	VideoFormat struct {
		FormatID       string  `mapstructure:"format_id" json:"format_id"`
		Ext            string  `mapstructure:"ext" json:"ext"`
		Resolution     string  `mapstructure:"resolution" json:"resolution"`
		FilesizeApprox float64 `mapstructure:"filesize_approx" json:"filesize_approx"`
	}

	// VideoMetadata is the typed subset of the metadata blob yt-dlp
	// emits for a video. Raw retains the entire blob for callers that
	// need fields we don't model.
	VideoMetadata struct {
		ID             string        `mapstructure:"id"`
		Title          string        `mapstructure:"title"`
		Uploader       string        `mapstructure:"uploader"`
		ChannelID      string        `mapstructure:"channel_id"`
		Duration       float64       `mapstructure:"duration"`
		DurationString string        `mapstructure:"duration_string"`
		ViewCount      int64         `mapstructure:"view_count"`
		LikeCount      int64         `mapstructure:"like_count"`
		CommentCount   int64         `mapstructure:"comment_count"`
		UploadDate     string        `mapstructure:"upload_date"`
		Categories     []string      `mapstructure:"categories"`
		Tags           []string      `mapstructure:"tags"`
		Description    string        `mapstructure:"description"`
		Thumbnail      string        `mapstructure:"thumbnail"`
		Formats        []VideoFormat `mapstructure:"formats"`

		Raw map[string]any `mapstructure:"-" json:"-"`
	}

	// VideoSummary is the curated per-video payload served by the
	// details endpoint; a trimmed view over VideoMetadata.
	VideoSummary struct {
		ID               string        `json:"id"`
		Title            string        `json:"title"`
		Uploader         string        `json:"uploader"`
		ChannelID        string        `json:"channel_id"`
		Duration         float64       `json:"duration"`
		DurationString   string        `json:"duration_string"`
		ViewCount        int64         `json:"view_count"`
		LikeCount        int64         `json:"like_count"`
		CommentCount     int64         `json:"comment_count"`
		UploadDate       string        `json:"upload_date"`
		Categories       []string      `json:"categories"`
		Description      string        `json:"description"`
		Thumbnail        string        `json:"thumbnail"`
		FormatsAvailable []VideoFormat `json:"formats_available"`
		Tags             []string      `json:"tags"`
	}

	// CompactMetadata is the abbreviated form embedded in download
	// responses and history rows.
	CompactMetadata struct {
		ID         string  `json:"id"`
		Title      string  `json:"title"`
		Duration   float64 `json:"duration"`
		Uploader   string  `json:"uploader"`
		UploadDate string  `json:"upload_date"`
		ViewCount  int64   `json:"view_count"`
		Thumbnail  string  `json:"thumbnail"`
	}

	MetadataService struct {
		config   DownloadConfig
		executor executor.Executor
	}
)

func NewMetadataService(config DownloadConfig, exec executor.Executor) *MetadataService {
	return &MetadataService{config: config, executor: exec}
}

// FetchMetadata asks yt-dlp for the metadata JSON of the given video
// and decodes it. The URL must already have passed validation; this
// service performs no checking of its own.
func (service *MetadataService) FetchMetadata(ctx context.Context, url ValidatedURL) (*VideoMetadata, error) {
	timeout := service.config.MetadataTimeout()
	result := service.executor.Run(ctx, executor.Command{
		Program: tools.YtDlp,
		Args:    []string{"-j", "--no-warnings", url.String()},
		Timeout: timeout,
	})

	if err := classifyResult(tools.YtDlp, timeout, result); err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := json.Unmarshal(result.Output, &raw); err != nil {
		return nil, &OutputParseError{reason: "yt-dlp metadata output is not valid JSON"}
	}

	// yt-dlp's numeric fields arrive as whatever JSON felt like, so a
	// weak decode is used to coerce them into the typed struct.
	var metadata VideoMetadata
	if err := mapstructure.WeakDecode(raw, &metadata); err != nil {
		return nil, &OutputParseError{reason: "yt-dlp metadata JSON has an unexpected shape: " + err.Error()}
	}

	metadata.Raw = raw
	log.Debugf("Fetched metadata for video '%s' (%s)\n", metadata.Title, metadata.ID)

	return &metadata, nil
}

// Summary trims the metadata down to the fields the details endpoint
// serves, capping the description and format listing.
func (metadata *VideoMetadata) Summary() VideoSummary {
	description := metadata.Description
	if runes := []rune(description); len(runes) > descriptionLimit {
		description = string(runes[:descriptionLimit])
	}

	formats := metadata.Formats
	if len(formats) > 5 {
		formats = formats[:5]
	}

	return VideoSummary{
		ID:               metadata.ID,
		Title:            metadata.Title,
		Uploader:         metadata.Uploader,
		ChannelID:        metadata.ChannelID,
		Duration:         metadata.Duration,
		DurationString:   metadata.DurationString,
		ViewCount:        metadata.ViewCount,
		LikeCount:        metadata.LikeCount,
		CommentCount:     metadata.CommentCount,
		UploadDate:       metadata.UploadDate,
		Categories:       metadata.Categories,
		Description:      description,
		Thumbnail:        metadata.Thumbnail,
		FormatsAvailable: formats,
		Tags:             metadata.Tags,
	}
}

func (metadata *VideoMetadata) Compact() CompactMetadata {
	return CompactMetadata{
		ID:         metadata.ID,
		Title:      metadata.Title,
		Duration:   metadata.Duration,
		Uploader:   metadata.Uploader,
		UploadDate: metadata.UploadDate,
		ViewCount:  metadata.ViewCount,
		Thumbnail:  metadata.Thumbnail,
	}
}
