package youtube

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hbomb79/Siphon/internal/event"
	"github.com/hbomb79/Siphon/internal/executor"
	"github.com/hbomb79/Siphon/internal/ffmpeg"
	"github.com/hbomb79/Siphon/internal/tools"
)

type (
	// DownloadedFile describes the file a completed download produced.
	DownloadedFile struct {
		Name   string  `json:"name"`
		Path   string  `json:"path"`
		SizeMB float64 `json:"size_mb"`
	}

	// Download is the outcome of a successful download job.
	Download struct {
		ID       uuid.UUID
		File     DownloadedFile
		Media    *ffmpeg.MediaInfo
		Metadata *VideoMetadata
	}

	// MediaProber inspects a local media file; satisfied by the ffmpeg
	// prober, and stubbed in tests.
	MediaProber interface {
		ProbeFile(path string) (*ffmpeg.MediaInfo, error)
	}

	DownloadService struct {
		config   DownloadConfig
		executor executor.Executor
		metadata *MetadataService
		prober   MediaProber
		eventBus event.EventCoordinator
	}
)

func NewDownloadService(
	config DownloadConfig,
	exec executor.Executor,
	metadata *MetadataService,
	prober MediaProber,
	eventBus event.EventCoordinator,
) (*DownloadService, error) {
	if config.OutputDir == "" {
		return nil, errors.New("download service requires a non-empty output directory")
	}
	if config.OutputFormat == "" {
		return nil, errors.New("download service requires a non-empty output format")
	}

	return &DownloadService{
		config:   config,
		executor: exec,
		metadata: metadata,
		prober:   prober,
		eventBus: eventBus,
	}, nil
}

// Download fetches the video behind the URL to local disk, merging it
// into the configured container format. Each job writes into a fresh
// subdirectory of the output dir, keyed by the job ID, so concurrent
// downloads of identically-titled videos cannot collide.
//
// The metadata is fetched first; a video whose metadata cannot be read
// is not worth spending a long download on.
func (service *DownloadService) Download(ctx context.Context, url ValidatedURL) (*Download, error) {
	metadata, err := service.metadata.FetchMetadata(ctx, url)
	if err != nil {
		return nil, err
	}

	downloadID := uuid.New()
	jobDir := filepath.Join(service.config.OutputDir, downloadID.String())
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	service.eventBus.Dispatch(event.DOWNLOAD_START, event.DownloadStartPayload{DownloadID: downloadID})
	log.Infof("Download %s started for video '%s'\n", downloadID, metadata.Title)

	timeout := service.config.DownloadTimeout()
	template := filepath.Join(jobDir, "%(title)s."+service.config.OutputFormat)
	result := service.executor.Run(ctx, executor.Command{
		Program: tools.YtDlp,
		Args: []string{
			"-f", "bestvideo+bestaudio/best",
			"--merge-output-format", service.config.OutputFormat,
			"-o", template,
			url.String(),
		},
		Timeout: timeout,
	})

	if err := classifyResult(tools.YtDlp, timeout, result); err != nil {
		service.dispatchFailure(downloadID, err)
		return nil, err
	}

	file, err := locateOutputFile(jobDir)
	if err != nil {
		service.dispatchFailure(downloadID, err)
		return nil, err
	}

	// A failed probe is not worth failing the whole download over; the
	// response simply omits the media details.
	var media *ffmpeg.MediaInfo
	if info, probeErr := service.prober.ProbeFile(file.Path); probeErr != nil {
		log.Warnf("Probe of downloaded file for job %s FAILED: %v\n", downloadID, probeErr)
	} else {
		media = info
	}

	service.dispatchComplete(downloadID, url, metadata, file, media)
	log.Infof("Download %s complete ('%s', %.2fMB)\n", downloadID, file.Name, file.SizeMB)

	return &Download{ID: downloadID, File: file, Media: media, Metadata: metadata}, nil
}

func (service *DownloadService) dispatchFailure(downloadID uuid.UUID, err error) {
	service.eventBus.Dispatch(event.DOWNLOAD_FAILED, event.DownloadFailedPayload{
		DownloadID: downloadID,
		Reason:     err.Error(),
	})
}

func (service *DownloadService) dispatchComplete(
	downloadID uuid.UUID,
	url ValidatedURL,
	metadata *VideoMetadata,
	file DownloadedFile,
	media *ffmpeg.MediaInfo,
) {
	payload := event.DownloadCompletePayload{
		DownloadID: downloadID,
		URL:        url.String(),
		VideoID:    metadata.ID,
		Title:      metadata.Title,
		FileName:   file.Name,
		FilePath:   file.Path,
		SizeMB:     file.SizeMB,
		Format:     service.config.OutputFormat,
	}
	if media != nil {
		payload.Format = media.Format
		payload.DurationSecs = media.DurationSecs
	}

	service.eventBus.Dispatch(event.DOWNLOAD_COMPLETE, payload)
}

// locateOutputFile finds the file the download produced inside the
// job's directory. The largest regular file wins; leftover fragment
// files from the merge step are ignored.
func locateOutputFile(dir string) (DownloadedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DownloadedFile{}, fmt.Errorf("failed to read download directory: %w", err)
	}

	var (
		found bool
		best  DownloadedFile
	)
	for _, entry := range entries {
		if entry.IsDir() || isFragmentFile(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}

		sizeMB := math.Round(float64(info.Size())/(1024*1024)*100) / 100
		if !found || sizeMB > best.SizeMB {
			found = true
			best = DownloadedFile{
				Name:   entry.Name(),
				Path:   filepath.Join(dir, entry.Name()),
				SizeMB: sizeMB,
			}
		}
	}

	if !found {
		return DownloadedFile{}, &OutputParseError{reason: "download reported success but no output file was produced"}
	}

	return best, nil
}

func isFragmentFile(name string) bool {
	return strings.HasSuffix(name, ".part") || strings.HasSuffix(name, ".ytdl") || strings.HasSuffix(name, ".temp")
}
