package download

import (
	"github.com/hbomb79/Siphon/internal/database"
	"github.com/hbomb79/Siphon/internal/event"
	"github.com/jmoiron/sqlx"
)

// Recorder listens for completed downloads on the event bus and persists
// them to the history store. Registering it is the only wiring the
// orchestrator needs to do; the download service itself never touches
// the database.
type Recorder struct {
	db    database.Manager
	store *Store
}

func NewRecorder(db database.Manager, store *Store) *Recorder {
	return &Recorder{db: db, store: store}
}

// RegisterWith subscribes the recorder to the download lifecycle events
// it cares about. Recording runs asynchronously so a slow disk cannot
// stall the dispatching download.
func (recorder *Recorder) RegisterWith(handler event.EventHandler) {
	handler.RegisterAsyncHandlerFunction(event.DOWNLOAD_COMPLETE, recorder.handleComplete)
	handler.RegisterHandlerFunction(event.DOWNLOAD_FAILED, recorder.handleFailed)
}

func (recorder *Recorder) handleComplete(_ event.Event, payload event.Payload) {
	completed, ok := payload.(event.DownloadCompletePayload)
	if !ok {
		log.Errorf("Illegal payload %T for download completion, ignoring\n", payload)
		return
	}

	row := &Download{
		ID:       completed.DownloadID,
		URL:      completed.URL,
		VideoID:  completed.VideoID,
		Title:    completed.Title,
		FileName: completed.FileName,
		FilePath: completed.FilePath,
		SizeMB:   completed.SizeMB,
		Format:   completed.Format,
	}
	if completed.DurationSecs > 0 {
		duration := completed.DurationSecs
		row.DurationSecs = &duration
	}

	err := recorder.db.WrapTx(func(tx *sqlx.Tx) error { return recorder.store.Save(tx, row) })
	if err != nil {
		log.Errorf("Failed to record download %s in history: %v\n", completed.DownloadID, err)
		return
	}

	log.Infof("Recorded download %s (%s) in history\n", completed.DownloadID, completed.Title)
	log.Debugf("Download %s source url: %s\n", completed.DownloadID, completed.URL)
}

func (recorder *Recorder) handleFailed(_ event.Event, payload event.Payload) {
	failed, ok := payload.(event.DownloadFailedPayload)
	if !ok {
		return
	}

	log.Warnf("Download %s failed: %s\n", failed.DownloadID, failed.Reason)
}
