// Persistence for the download history. Completed downloads are recorded
// as rows in the 'downloads' table; the media files themselves stay on
// disk and are never stored here.
package download

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/google/uuid"
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("DownloadStore")

// searchSimilarityFloor is the minimum fuzzy-match score a row must reach
// against the search term before it is included in the results. Jaro-Winkler
// flatters any pair of strings sharing a prefix, so the floor sits high.
const searchSimilarityFloor = 0.75

type (
	// Download is a single row of download history. DurationSecs is a
	// pointer as the media probe of the finished file is allowed to fail,
	// leaving the duration unknown.
	Download struct {
		ID           uuid.UUID `db:"id"`
		URL          string    `db:"url"`
		VideoID      string    `db:"video_id"`
		Title        string    `db:"title"`
		FileName     string    `db:"file_name"`
		FilePath     string    `db:"file_path"`
		SizeMB       float64   `db:"size_mb"`
		Format       string    `db:"format"`
		DurationSecs *float64  `db:"duration_secs"`
		CreatedAt    time.Time `db:"created_at"`
	}

	Store struct{}
)

func NewStore() *Store {
	return &Store{}
}

// Save inserts the provided download row. The CreatedAt timestamp is
// filled in if the caller has not set one.
func (store *Store) Save(db database.Queryable, download *Download) error {
	if download.CreatedAt.IsZero() {
		download.CreatedAt = time.Now().UTC()
	}

	_, err := db.NamedExec(`
		INSERT INTO downloads(id, url, video_id, title, file_name, file_path, size_mb, format, duration_secs, created_at)
		VALUES(:id, :url, :video_id, :title, :file_name, :file_path, :size_mb, :format, :duration_secs, :created_at)
	`, download)
	if err != nil {
		return fmt.Errorf("failed to insert download history row: %w", err)
	}

	return nil
}

// List returns the entire download history, newest first.
func (store *Store) List(db database.Queryable) ([]*Download, error) {
	query, args, err := selectDownloadBuilder().ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to construct list downloads query: %w", err)
	}

	var results []*Download
	if err := db.Select(&results, db.Rebind(query), args...); err != nil {
		return nil, err
	}

	return results, nil
}

// Search returns history rows whose title or URL resembles the given term,
// best match first. Rows are fetched newest-first and then ranked in-process
// as the similarity metric cannot be expressed in SQL.
func (store *Store) Search(db database.Queryable, term string) ([]*Download, error) {
	rows, err := store.List(db)
	if err != nil {
		return nil, err
	}

	loweredTerm := strings.ToLower(strings.TrimSpace(term))
	if loweredTerm == "" {
		return rows, nil
	}

	type scoredRow struct {
		row   *Download
		score float64
	}

	metric := metrics.NewJaroWinkler()
	scored := make([]scoredRow, 0, len(rows))
	for _, row := range rows {
		loweredTitle, loweredURL := strings.ToLower(row.Title), strings.ToLower(row.URL)
		score := strutil.Similarity(loweredTitle, loweredTerm, metric)
		if urlScore := strutil.Similarity(loweredURL, loweredTerm, metric); urlScore > score {
			score = urlScore
		}

		// Substring hits always qualify; the metric alone undervalues
		// terms taken from the middle of a long title or URL.
		if strings.Contains(loweredTitle, loweredTerm) || strings.Contains(loweredURL, loweredTerm) {
			score = 1
		}

		if score >= searchSimilarityFloor {
			scored = append(scored, scoredRow{row, score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].score > scored[j].score })

	matches := make([]*Download, len(scored))
	for i, entry := range scored {
		matches[i] = entry.row
	}

	log.Debugf("Search for %q matched %d of %d history rows\n", term, len(matches), len(rows))
	return matches, nil
}

func selectDownloadBuilder() squirrel.SelectBuilder {
	return squirrel.
		Select("*").
		From("downloads").
		OrderBy("created_at DESC")
}
