package database

type DatabaseConfig struct {
	// Path is the location of the SQLite database file on disk. A blank
	// path is filled in from the download directory during config load.
	Path string `yaml:"path" env:"DB_PATH" validate:"required"`
}
