package parvec

import (
    "github.com/parvec/parvec/comm";
)

// Reducer folds per-worker partial results into a single value.
type Reducer struct {
    comm comm.Communicator
}

func NewReducer(communicator comm.Communicator) *Reducer {
    return &Reducer{comm: communicator}
}

// Sum adds every worker's value at the destination worker. The boolean is
// true only at the destination; other workers receive no meaningful value.
func (r *Reducer) Sum(local float64, destination int) (float64, bool, error) {
    return r.comm.ReduceSum(local, destination)
}
