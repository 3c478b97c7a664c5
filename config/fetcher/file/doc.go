// Package file provides a file-based DataFetcher.
//
// The file is read at construction time and cached, so Fetch always returns the same
// bytes. Stale compares the file's current modification time and size with the cached
// copy; the data-file backends use it to decide when a document must be read again.
//
// Usage:
//
//	fetcher, err := file.NewFetcher("/etc/hiera.yaml")()
//	if err != nil {
//	    // file not found, permission denied, path is a directory, ...
//	}
//	data, err := fetcher.Fetch()
//
// Use errors.Is(err, file.ErrPathIsDirectory) to check for directory errors and
// errors.Is(err, fs.ErrNotExist) for missing files.
package file
