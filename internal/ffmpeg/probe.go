// Package ffmpeg wraps the ffprobe bindings used to inspect media files
// that Siphon has downloaded, reporting their container and runtime.
package ffmpeg

import (
	"fmt"
	"strconv"

	"github.com/floostack/transcoder/ffmpeg"
)

type (
	ProbeConfig struct {
		FfprobeBinPath string `yaml:"ffprobe_path" env:"FFPROBE_PATH" env-default:"ffprobe" validate:"required"`
	}

	// MediaInfo is the subset of probe output Siphon reports alongside
	// a completed download.
	MediaInfo struct {
		Format       string  `json:"format"`
		DurationSecs float64 `json:"duration_secs"`
	}

	Prober struct {
		config ProbeConfig
	}
)

func NewProber(config ProbeConfig) *Prober {
	return &Prober{config: config}
}

// ProbeFile reads the media metadata of the file at the given path
// using ffprobe.
func (prober *Prober) ProbeFile(path string) (*MediaInfo, error) {
	cfg := ffmpeg.Config{FfprobeBinPath: prober.config.FfprobeBinPath}
	metadata, err := ffmpeg.New(&cfg).Input(path).GetMetadata()
	if err != nil {
		return nil, fmt.Errorf("failed to extract file metadata information using ffprobe: %s", err.Error())
	}

	format := metadata.GetFormat()
	info := MediaInfo{Format: format.GetFormatName()}

	// ffprobe reports duration as a decimal string of seconds.
	if duration, err := strconv.ParseFloat(format.GetDuration(), 64); err == nil {
		info.DurationSecs = duration
	}

	return &info, nil
}
