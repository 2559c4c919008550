package storage

import (
    "io";
    "os";
)

type localStorage struct {}

func NewLocal() Storage {
    return &localStorage{}
}

func (s *localStorage) Exists(path string) (bool, error) {
    _, err := os.Stat(path)
    if os.IsNotExist(err) {
        return false, nil
    }
    if err != nil {
        return false, err
    }
    return true, nil
}

func (s *localStorage) Reader(path string) (io.ReadCloser, error) {
    return os.Open(path)
}

func (s *localStorage) Writer(path string) (io.WriteCloser, error) {
    return os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0755)
}
