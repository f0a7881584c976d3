package youtube

import "time"

// DownloadConfig controls where downloaded media is written and how
// long the external tools are given for each job.
type DownloadConfig struct {
	// Directory downloaded videos are written to. Each request gets its
	// own subdirectory inside this path.
	OutputDir string `yaml:"output_dir" env:"DOWNLOAD_DIR" validate:"required"`

	// Container format the final file is merged in to.
	OutputFormat string `yaml:"output_format" env:"DOWNLOAD_FORMAT" env-default:"mp4" validate:"required,alphanum"`

	// Downloads can legitimately run for a long time on slow
	// connections, so this ceiling is generous.
	DownloadTimeoutSeconds int `yaml:"download_timeout" env:"DOWNLOAD_TIMEOUT" env-default:"900" validate:"gt=0"`

	MetadataTimeoutSeconds int `yaml:"metadata_timeout" env:"METADATA_TIMEOUT" env-default:"30" validate:"gt=0"`

	ThumbnailTimeoutSeconds int `yaml:"thumbnail_timeout" env:"THUMBNAIL_TIMEOUT" env-default:"10" validate:"gt=0"`
}

func (config *DownloadConfig) DownloadTimeout() time.Duration {
	return time.Duration(config.DownloadTimeoutSeconds) * time.Second
}

func (config *DownloadConfig) MetadataTimeout() time.Duration {
	return time.Duration(config.MetadataTimeoutSeconds) * time.Second
}

func (config *DownloadConfig) ThumbnailTimeout() time.Duration {
	return time.Duration(config.ThumbnailTimeoutSeconds) * time.Second
}
