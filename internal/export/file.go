package export

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"codeberg.org/vasker/fleetsim/internal/errors"
	"codeberg.org/vasker/fleetsim/internal/logger"
	"codeberg.org/vasker/fleetsim/internal/machine"
)

// payloadRecord is the JSON-lines representation of one machine tick.
type payloadRecord struct {
	DeviceID    string             `json:"device_id"`
	MachineType string             `json:"machine_type"`
	TS          int64              `json:"ts"`
	Values      map[string]float64 `json:"values"`
}

// fileRecorder appends payloads to a JSON-lines file through a buffered
// writer, flushed periodically by a background goroutine.
type fileRecorder struct {
	file          *os.File
	writer        *bufio.Writer
	log           logger.Logger
	mu            sync.Mutex
	flushTicker   *time.Ticker
	shutdownChan  chan struct{}
	flushDoneChan chan struct{}
}

func newFileRecorder(path string, flushInterval time.Duration, log logger.Logger) (*fileRecorder, error) {
	errFactory := errors.New()

	if err := os.MkdirAll(filepath.Dir(path), defaultDirPerm); err != nil {
		return nil, errFactory.Wrap(ErrFileOpen, err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errFactory.Wrap(ErrFileOpen, err)
	}

	r := &fileRecorder{
		file:          file,
		writer:        bufio.NewWriter(file),
		log:           log,
		flushTicker:   time.NewTicker(flushInterval),
		shutdownChan:  make(chan struct{}),
		flushDoneChan: make(chan struct{}),
	}
	go r.flusher()

	log.Debug().Str("path", path).Msg("JSON export sink opened")

	return r, nil
}

func (r *fileRecorder) Record(_ context.Context, payload machine.Payload) error {
	line, err := json.Marshal(payloadRecord{
		DeviceID:    payload.DeviceID,
		MachineType: string(payload.Type),
		TS:          payload.Timestamp,
		Values:      payload.Values,
	})
	if err != nil {
		return errors.New().Wrap(ErrFileWrite, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.writer.Write(line); err != nil {
		return errors.New().Wrap(ErrFileWrite, err)
	}
	if err := r.writer.WriteByte('\n'); err != nil {
		return errors.New().Wrap(ErrFileWrite, err)
	}

	return nil
}

func (r *fileRecorder) Close() error {
	close(r.shutdownChan)
	r.flushTicker.Stop()
	<-r.flushDoneChan

	r.mu.Lock()
	defer r.mu.Unlock()

	errFactory := errors.New()
	if err := r.writer.Flush(); err != nil {
		return errFactory.Wrap(ErrFileClose, err)
	}
	if err := r.file.Close(); err != nil {
		return errFactory.Wrap(ErrFileClose, err)
	}

	return nil
}

func (r *fileRecorder) flusher() {
	defer close(r.flushDoneChan)

	for {
		select {
		case <-r.flushTicker.C:
			r.mu.Lock()
			if err := r.writer.Flush(); err != nil {
				r.log.Error().Err(err).Msg("Failed to flush JSON export sink")
			}
			r.mu.Unlock()
		case <-r.shutdownChan:
			return
		}
	}
}
