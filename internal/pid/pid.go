package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"codeberg.org/vasker/fleetsim/internal/errors"
)

const pidFile = "fleetsim.pid"

func path() string {
	return filepath.Join(os.TempDir(), pidFile)
}

// Write records the current process ID, refusing when a live instance
// already holds the file. A stale file from a dead process is overwritten.
func Write() error {
	errFactory := errors.New()

	if existing, err := read(); err == nil {
		process, err := os.FindProcess(existing)
		if err == nil && process.Signal(syscall.Signal(0)) == nil {
			return errFactory.WithData(errors.ErrAlreadyRunning, existing)
		}
	}

	if err := os.WriteFile(path(), []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(errors.ErrInternal, err)
	}

	return nil
}

// Remove removes the PID file.
func Remove() error {
	if err := os.Remove(path()); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

func read() (int, error) {
	bytes, err := os.ReadFile(path())
	if err != nil {
		return 0, err
	}

	return strconv.Atoi(string(bytes))
}
