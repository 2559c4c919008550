package storage

import (
    "io";
    "strings";

    "google.golang.org/api/option";
)

type Storage interface {
    Exists(string) (bool, error)
    Reader(string) (io.ReadCloser, error)
    Writer(string) (io.WriteCloser, error)
}

// ForPath selects a backend by path scheme. Paths starting with gs:// are
// served by Google Cloud Storage, everything else by the local filesystem.
func ForPath(path string, options ...option.ClientOption) (Storage, error) {
    if strings.HasPrefix(path, "gs://") {
        return NewGCS(options...)
    }
    return NewLocal(), nil
}
