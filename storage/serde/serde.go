package serde

import (
    "github.com/parvec/parvec/math";
)

type Reader interface {
    ReadItem() (int64, math.Vector, error)
}

type Writer interface {
    WriteItem(int64, math.Vector) error
    Flush() error
}
