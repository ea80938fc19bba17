// Package staging writes request input into transient, request-unique files
// that an external process can read, and removes them again.
package staging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// filePrefix is shared by every staged artifact so stray files are easy to spot.
const filePrefix = "summary_input_"

// Stager creates transient artifacts inside a single directory.
// It is safe for concurrent use.
type Stager struct {
	dir string
	now func() time.Time
}

// NewStager returns a Stager writing into dir.
// An empty dir means the operating system's temporary directory.
func NewStager(dir string) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Stager{dir: dir, now: time.Now}
}

// Dir returns the directory artifacts are created in.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage writes text into a newly created, uniquely named file.
//
// The file name combines a nanosecond timestamp with a random UUID and the file is
// opened with O_EXCL, so two in-flight requests can never share an artifact.
// If the write fails after the file was created, the partial file is removed
// before the error is returned.
func (s *Stager) Stage(text string) (*Artifact, error) {
	name := fmt.Sprintf("%s%d_%s.txt", filePrefix, s.now().UnixNano(), uuid.NewString())
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create artifact: %w", err)
	}

	_, writeErr := io.WriteString(f, text)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) {
			err = errors.Join(err, fmt.Errorf("remove partial artifact: %w", rmErr))
		}
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	return &Artifact{path: path}, nil
}

// Artifact is one staged file. It is owned by a single request.
type Artifact struct {
	path string

	once      sync.Once
	removeErr error
}

// Path returns the absolute or dir-relative location of the artifact.
func (a *Artifact) Path() string {
	return a.path
}

// Remove deletes the artifact. Only the first call touches the filesystem;
// later calls return the first result. A file that is already gone is not an error.
func (a *Artifact) Remove() error {
	a.once.Do(func() {
		err := os.Remove(a.path)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			a.removeErr = fmt.Errorf("remove artifact: %w", err)
		}
	})
	return a.removeErr
}
