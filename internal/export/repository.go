package export

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"

	_ "github.com/mattn/go-sqlite3"
)

// archiveRecorder batches payloads into a SQLite archive, one row per sensor
// reading. A background goroutine flushes on a timeout so short runs are not
// lost to an underfilled batch.
type archiveRecorder struct {
	db            *sql.DB
	log           logger.Logger
	cfg           Config
	mu            sync.Mutex
	buffer        []machine.Payload
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func newArchiveRecorder(cfg Config, log logger.Logger) (*archiveRecorder, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), defaultDirPerm); err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Path  string
			Error string
		}{
			Phase: "create_directory",
			Path:  cfg.DBPath,
			Error: err.Error(),
		})
	}

	dsn := cfg.DBPath + "?_journal=WAL&_auto_vacuum=2"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errFactory.WithData(ErrStorageInit, struct {
			Phase string
			Error string
		}{
			Phase: "open_database",
			Error: err.Error(),
		})
	}

	if err := initSchema(db); err != nil {
		db.Close()

		return nil, err
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("batch_size", cfg.BatchSize).
		Dur("batch_timeout", cfg.BatchTimeout).
		Msg("Archive recorder initialized")

	r := &archiveRecorder{
		db:            db,
		log:           log,
		cfg:           cfg,
		buffer:        make([]machine.Payload, 0, cfg.BatchSize),
		flushTicker:   time.NewTicker(cfg.BatchTimeout),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go r.flusher()

	return r, nil
}

func (r *archiveRecorder) Record(_ context.Context, payload machine.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, payload)

	if len(r.buffer) >= r.cfg.BatchSize {
		return r.flush()
	}

	return nil
}

func (r *archiveRecorder) Close() error {
	close(r.shutdownChan)
	r.flushTicker.Stop()
	<-r.flushDoneChan

	errFactory := errors.New()

	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "checkpoint_wal",
			Error: err.Error(),
		})
	}

	if err := r.db.Close(); err != nil {
		return errFactory.WithData(ErrStorageClose, struct {
			Phase string
			Error string
		}{
			Phase: "close_database",
			Error: err.Error(),
		})
	}

	r.log.Info().Msg("Archive recorder closed gracefully")

	return nil
}

func (r *archiveRecorder) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.log.Error().Err(err).Msg("Periodic archive flush failed")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			r.mu.Lock()
			if err := r.flush(); err != nil {
				r.log.Error().Err(err).Msg("Final archive flush failed")
			}
			r.mu.Unlock()

			return
		}
	}
}

// flush writes the buffered payloads in one transaction. Callers must hold
// the mutex.
func (r *archiveRecorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	errFactory := errors.New()

	tx, err := r.db.Begin()
	if err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	stmt, err := tx.Prepare(insertReadingSQL())
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Error().Err(rbErr).Msg("Failed to roll back transaction")
		}

		return errFactory.Wrap(ErrTransactionFailed, err)
	}
	defer stmt.Close()

	rows := 0
	for _, payload := range r.buffer {
		for _, reading := range payload.Readings {
			_, err := stmt.Exec(
				reading.Timestamp,
				reading.MachineID,
				string(payload.Type),
				reading.Sensor,
				reading.Unit,
				reading.Value,
			)
			if err != nil {
				if rbErr := tx.Rollback(); rbErr != nil {
					r.log.Error().Err(rbErr).Msg("Failed to roll back transaction")
				}

				return errFactory.Wrap(ErrTransactionFailed, err)
			}
			rows++
		}
	}

	if err := tx.Commit(); err != nil {
		return errFactory.Wrap(ErrTransactionFailed, err)
	}

	r.log.Debug().Int("payloads", len(r.buffer)).Int("rows", rows).Msg("Flushed readings to archive")
	r.buffer = r.buffer[:0]

	return nil
}
