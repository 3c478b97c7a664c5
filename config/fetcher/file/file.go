package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrPathIsDirectory is returned when the path provided to the Fetcher points to a directory instead of a file.
var ErrPathIsDirectory = errors.New("path is a directory, not a file")

// Fetcher implements config.DataFetcher for a single file.
// The file is read once at construction time; Stale reports whether it changed since.
type Fetcher struct {
	filepath string
	data     []byte
	modTime  time.Time
	size     int64
}

// NewFetcher returns a constructor for a file-based Fetcher.
// The constructor form lets the Fx container decide when the file is read.
func NewFetcher(fpath string) func() (*Fetcher, error) {
	return func() (*Fetcher, error) {
		cleanPath := filepath.Clean(fpath)

		stat, err := statFile(cleanPath)
		if err != nil {
			return nil, err
		}

		data, err := os.ReadFile(cleanPath) // #nosec G304 -- path is cleaned and validated
		if err != nil {
			return nil, fmt.Errorf("reading file %q: %w", cleanPath, err)
		}

		return &Fetcher{
			filepath: cleanPath,
			data:     data,
			modTime:  stat.ModTime(),
			size:     stat.Size(),
		}, nil
	}
}

// Fetch returns a copy of the data read at construction time.
func (f *Fetcher) Fetch() ([]byte, error) {
	result := make([]byte, len(f.data))
	copy(result, f.data)

	return result, nil
}

// Path returns the cleaned file path.
func (f *Fetcher) Path() string {
	return f.filepath
}

// Stale reports whether the file on disk differs in modification time or size from the cached copy.
// A file that disappeared is reported through the returned error.
func (f *Fetcher) Stale() (bool, error) {
	stat, err := statFile(f.filepath)
	if err != nil {
		return false, err
	}

	return !stat.ModTime().Equal(f.modTime) || stat.Size() != f.size, nil
}

func statFile(path string) (os.FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat file %q: %w", path, err)
	}

	if stat.IsDir() {
		return nil, fmt.Errorf("path %q: %w", path, ErrPathIsDirectory)
	}

	return stat, nil
}
